package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/abcnetworks/crm-sdk/pkg/crm"
	"github.com/abcnetworks/crm-sdk/pkg/generator"
	"github.com/abcnetworks/crm-sdk/pkg/mapping"
	"github.com/abcnetworks/crm-sdk/pkg/registry"
)

type CLIConfig struct {
	Host      string
	Port      string
	PlainText bool
	Timeout   int
	CallerID  string
	// Entity configuration source
	EtcdEndpoints string
	EtcdPrefix    string
	EntityType    string
	// Demo inputs
	FirstName string
	LastName  string
}

// Contact is the demo entity. Real services bring their own generated
// types; any struct with mapped exported fields works.
type Contact struct {
	ContactId *crm.FormattedGuid
	FirstName string
	LastName  string
	Email     string
	CreatedOn *crm.FormattedTimestamp
}

func contactGenerator() (*generator.Generator, error) {
	table, err := mapping.NewTable([]mapping.FieldMapping{
		{Field: "ContactId", Key: "contactid"},
		{Field: "FirstName", Key: "firstname"},
		{Field: "LastName", Key: "lastname"},
		{Field: "Email", Key: "emailaddress1"},
		{Field: "CreatedOn", Key: "createdon"},
	})
	if err != nil {
		return nil, err
	}
	return generator.New(generator.Config{
		EntityType:     "contacts",
		GuidField:      "contactid",
		RequiredFields: []string{"LastName"},
		ProtectedFields: map[generator.CrudType][]string{
			generator.CrudCreate: {"ContactId", "CreatedOn"},
			generator.CrudUpdate: {"ContactId", "CreatedOn"},
		},
		Mappings: table,
	})
}

func generatorFromEtcd(config *CLIConfig) (*generator.Generator, error) {
	store, err := registry.NewStore(registry.EtcdConfig{
		Endpoints: strings.Split(config.EtcdEndpoints, ","),
		Timeout:   5 * time.Second,
	}, config.EtcdPrefix)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	doc, err := store.Load(ctx, config.EntityType)
	if err != nil {
		return nil, err
	}
	cfg, err := doc.ToConfig()
	if err != nil {
		return nil, err
	}
	return generator.New(cfg)
}

func printEntity(label string, entity any) {
	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		fmt.Printf("%s: %v\n", label, entity)
		return
	}
	fmt.Printf("%s:\n%s\n", label, data)
}

func main() {
	config := &CLIConfig{}

	flag.StringVar(&config.Host, "host", "localhost", "CRM adapter host")
	flag.StringVar(&config.Port, "port", "9400", "CRM adapter port")
	flag.BoolVar(&config.PlainText, "plaintext", true, "Use plaintext connection (no TLS)")
	flag.IntVar(&config.Timeout, "timeout", 30000, "Request timeout in milliseconds")
	flag.StringVar(&config.CallerID, "caller-id", "crm-sdk-cli", "Caller id sent with every request")
	flag.StringVar(&config.EtcdEndpoints, "etcd", "", "Comma-separated etcd endpoints for entity configuration (optional)")
	flag.StringVar(&config.EtcdPrefix, "etcd-prefix", "/config/crm-sdk", "Etcd prefix holding entity configuration")
	flag.StringVar(&config.EntityType, "entity-type", "contacts", "Entity kind to load from etcd")
	flag.StringVar(&config.FirstName, "first-name", "Ada", "First name for the demo contact")
	flag.StringVar(&config.LastName, "last-name", "Lovelace", "Last name for the demo contact")
	flag.Parse()

	viper.Set(crm.V1Prefix+crm.Host, config.Host)
	viper.Set(crm.V1Prefix+crm.Port, config.Port)
	viper.Set(crm.V1Prefix+crm.DeadlineMS, config.Timeout)
	viper.Set(crm.V1Prefix+crm.PlainText, config.PlainText)
	viper.Set(crm.V1Prefix+crm.CallerID, config.CallerID)

	gateway := crm.InitClient(crm.Version1, nil, nil)

	var gen *generator.Generator
	var err error
	if config.EtcdEndpoints != "" {
		fmt.Printf("🔍 Loading %q configuration from etcd at %s\n", config.EntityType, config.EtcdEndpoints)
		gen, err = generatorFromEtcd(config)
	} else {
		gen, err = contactGenerator()
	}
	if err != nil {
		fmt.Printf("❌ Failed to build generator: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	sessionId := uuid.NewString()
	fmt.Printf("📌 Session %s against %s:%s (entity kind %q)\n",
		sessionId, config.Host, config.Port, gen.EntityType())

	contact := &Contact{
		FirstName: config.FirstName,
		LastName:  config.LastName,
		Email:     fmt.Sprintf("%s.%s@example.com", strings.ToLower(config.FirstName), strings.ToLower(config.LastName)),
	}

	created, err := gen.Create(ctx, gateway, contact)
	if err != nil {
		fmt.Printf("❌ Create failed: %v\n", err)
		os.Exit(1)
	}
	printEntity("✅ Created", created)

	results, err := gen.Search(ctx, gateway, generator.Search{
		AnyOf: []generator.CriteriaGroup{{
			AllOf: []generator.Criterion{{
				Field: "LastName",
				Match: crm.MatchEqual,
				Value: config.LastName,
			}},
		}},
		Limit:     10,
		ReturnAll: true,
	}, &Contact{})
	if err != nil {
		fmt.Printf("❌ Search failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Search returned %d contact(s)\n", len(results))
	for i, result := range results {
		printEntity(fmt.Sprintf("  result %d", i+1), result)
	}
}
