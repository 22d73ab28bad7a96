// Package registry loads per-entity-kind configuration documents and
// turns them into generator configurations. Documents are JSON, stored
// under an etcd prefix, one document per entity kind.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abcnetworks/crm-sdk/pkg/generator"
	"github.com/abcnetworks/crm-sdk/pkg/mapping"
)

var ErrInvalidDocument = errors.New("invalid entity configuration document")

// MappingRow is one translation row in a configuration document.
// LinkedEntities accepts either a single string or a list of strings;
// older documents used the single-string form.
type MappingRow struct {
	Field          string     `json:"field"`
	Key            string     `json:"key"`
	NavigationKey  string     `json:"navigation_key,omitempty"`
	LinkedEntities stringList `json:"linked_entities,omitempty"`
}

// Document is the JSON configuration for one entity kind.
// ProtectedFields accepts either a flat list, applied to every
// operation, or a map keyed by operation name.
type Document struct {
	EntityType          string          `json:"entity_type"`
	GuidField           string          `json:"guid_field"`
	CreationSourceValue string          `json:"creation_source_value,omitempty"`
	RequiredFields      []string        `json:"required_fields,omitempty"`
	ProtectedFields     protectedFields `json:"protected_fields,omitempty"`
	Mappings            []MappingRow    `json:"mappings"`
}

// stringList unmarshals from either a JSON string or a JSON array of
// strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = stringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("%w: linked entities must be a string or a list of strings", ErrInvalidDocument)
	}
	*l = many
	return nil
}

// protectedFields unmarshals from either a flat JSON array or an
// object keyed by operation name.
type protectedFields struct {
	flat  []string
	byOp  map[generator.CrudType][]string
	isMap bool
}

var crudTypeByName = map[string]generator.CrudType{
	"create": generator.CrudCreate,
	"read":   generator.CrudRead,
	"update": generator.CrudUpdate,
	"delete": generator.CrudDelete,
}

func (p *protectedFields) UnmarshalJSON(data []byte) error {
	var flat []string
	if err := json.Unmarshal(data, &flat); err == nil {
		p.flat = flat
		return nil
	}
	var byName map[string][]string
	if err := json.Unmarshal(data, &byName); err != nil {
		return fmt.Errorf("%w: protected fields must be a list or a map keyed by operation", ErrInvalidDocument)
	}
	p.isMap = true
	p.byOp = make(map[generator.CrudType][]string, len(byName))
	for name, fields := range byName {
		crudType, ok := crudTypeByName[name]
		if !ok {
			return fmt.Errorf("%w: unknown operation %q in protected fields", ErrInvalidDocument, name)
		}
		p.byOp[crudType] = fields
	}
	return nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.EntityType == "" {
		return nil, fmt.Errorf("%w: entity_type is required", ErrInvalidDocument)
	}
	if len(doc.Mappings) == 0 {
		return nil, fmt.Errorf("%w: at least one mapping row is required", ErrInvalidDocument)
	}
	return &doc, nil
}

// ToConfig converts the document into a generator configuration. The
// codec registry is left nil so the generator installs the built-in
// handlers; callers needing custom handlers set Codec afterwards.
func (d *Document) ToConfig() (generator.Config, error) {
	rows := make([]mapping.FieldMapping, 0, len(d.Mappings))
	for _, row := range d.Mappings {
		rows = append(rows, mapping.FieldMapping{
			Field:          row.Field,
			Key:            row.Key,
			NavigationKey:  row.NavigationKey,
			LinkedEntities: row.LinkedEntities,
		})
	}
	table, err := mapping.NewTable(rows)
	if err != nil {
		return generator.Config{}, err
	}
	cfg := generator.Config{
		EntityType:          d.EntityType,
		GuidField:           d.GuidField,
		CreationSourceValue: d.CreationSourceValue,
		RequiredFields:      d.RequiredFields,
		Mappings:            table,
	}
	if d.ProtectedFields.isMap {
		cfg.ProtectedFields = d.ProtectedFields.byOp
	} else {
		cfg.FlatProtectedFields = d.ProtectedFields.flat
	}
	return cfg, nil
}
