package generator

import (
	"fmt"

	"github.com/abcnetworks/crm-sdk/pkg/codec"
	"github.com/abcnetworks/crm-sdk/pkg/mapping"
)

// CrudType names the operation a payload is being built for.
type CrudType int

const (
	CrudCreate CrudType = iota + 1
	CrudRead
	CrudUpdate
	CrudDelete
)

var crudTypes = []CrudType{CrudCreate, CrudRead, CrudUpdate, CrudDelete}

// Config bundles everything the engine needs to know about one entity
// kind. It is supplied once by the calling service and read-only
// afterwards; one shared Generator replaces the per-entity subclassing
// the previous generation of this SDK relied on.
type Config struct {
	// EntityType is the CRM entity kind tag, eg. "contacts".
	EntityType string
	// GuidField is the generic key under which the entity's own guid
	// is reported, eg. "contactid".
	GuidField string
	// CreationSourceValue is the numerical-string CRM enum value that
	// records what system created the record.
	CreationSourceValue string
	// RequiredFields must resolve to a non-empty value at create/update.
	RequiredFields []string
	// ProtectedFields are excluded from payloads, per operation.
	ProtectedFields map[CrudType][]string
	// FlatProtectedFields is the legacy shape of ProtectedFields: one
	// list applied to every operation. Both may be set; they merge.
	FlatProtectedFields []string
	// Mappings is the field translation table.
	Mappings *mapping.Table
	// Codec handles field value conversion. When nil the built-in
	// registry is used; services with their own enumeration kinds pass
	// an extended clone.
	Codec *codec.Registry
}

func (c Config) validate() error {
	if c.EntityType == "" {
		return fmt.Errorf("%w: entity type is required", ErrInvalidConfig)
	}
	if c.Mappings == nil {
		return fmt.Errorf("%w: mapping table is required", ErrInvalidConfig)
	}
	return nil
}

// protectedSets normalizes the dual-shape protected-field config into
// one per-operation set, folding the legacy flat list into every
// operation.
func (c Config) protectedSets() map[CrudType]map[string]struct{} {
	protected := make(map[CrudType]map[string]struct{}, len(crudTypes))
	for _, op := range crudTypes {
		set := make(map[string]struct{})
		for _, field := range c.ProtectedFields[op] {
			set[field] = struct{}{}
		}
		for _, field := range c.FlatProtectedFields {
			set[field] = struct{}{}
		}
		protected[op] = set
	}
	return protected
}
