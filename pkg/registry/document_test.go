package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abcnetworks/crm-sdk/pkg/generator"
)

const contactDocument = `{
	"entity_type": "contacts",
	"guid_field": "contactid",
	"creation_source_value": "100000011",
	"required_fields": ["LastName"],
	"protected_fields": {
		"create": ["ContactId"],
		"update": ["ContactId", "CreatedOn"]
	},
	"mappings": [
		{"field": "ContactId", "key": "contactid"},
		{"field": "LastName", "key": "lastname"},
		{"field": "SiteState", "key": "new_sitestate", "navigation_key": "new_SiteStateid", "linked_entities": ["new_states"]}
	]
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(contactDocument))
	assert.NoError(t, err)
	assert.Equal(t, "contacts", doc.EntityType)
	assert.Equal(t, "contactid", doc.GuidField)
	assert.Equal(t, "100000011", doc.CreationSourceValue)
	assert.Equal(t, []string{"LastName"}, doc.RequiredFields)
	assert.Len(t, doc.Mappings, 3)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "not json"},
		{name: "missing entity type", data: `{"mappings": [{"field": "A", "key": "a"}]}`},
		{name: "missing mappings", data: `{"entity_type": "contacts"}`},
		{
			name: "unknown protected operation",
			data: `{"entity_type": "contacts", "protected_fields": {"upsert": ["A"]}, "mappings": [{"field": "A", "key": "a"}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestParseLegacyShapes(t *testing.T) {
	doc, err := Parse([]byte(`{
		"entity_type": "contacts",
		"protected_fields": ["ContactId"],
		"mappings": [
			{"field": "ContactId", "key": "contactid"},
			{"field": "SiteState", "key": "new_sitestate", "navigation_key": "new_SiteStateid", "linked_entities": "new_states"}
		]
	}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"ContactId"}, doc.ProtectedFields.flat)
	assert.False(t, doc.ProtectedFields.isMap)
	assert.Equal(t, stringList{"new_states"}, doc.Mappings[1].LinkedEntities)
}

func TestToConfig(t *testing.T) {
	doc, err := Parse([]byte(contactDocument))
	assert.NoError(t, err)

	cfg, err := doc.ToConfig()
	assert.NoError(t, err)
	assert.Equal(t, "contacts", cfg.EntityType)
	assert.Equal(t, "contactid", cfg.GuidField)
	assert.Equal(t, map[generator.CrudType][]string{
		generator.CrudCreate: {"ContactId"},
		generator.CrudUpdate: {"ContactId", "CreatedOn"},
	}, cfg.ProtectedFields)
	assert.Empty(t, cfg.FlatProtectedFields)

	key, ok := cfg.Mappings.Key("LastName")
	assert.True(t, ok)
	assert.Equal(t, "lastname", key)
	assert.True(t, cfg.Mappings.IsReference("SiteState"))

	gen, err := generator.New(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "contacts", gen.EntityType())
	assert.Equal(t, "100000011", gen.CreationSourceValue())
}

func TestToConfigInvalidMapping(t *testing.T) {
	doc, err := Parse([]byte(`{
		"entity_type": "contacts",
		"mappings": [{"field": "SiteState", "key": "new_sitestate", "navigation_key": "new_SiteStateid"}]
	}`))
	assert.NoError(t, err)

	_, err = doc.ToConfig()
	assert.Error(t, err)
}
