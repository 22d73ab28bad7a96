// Package generator translates strongly typed service entities to and
// from the generic key/value records the CRM adapter speaks, and wraps
// the adapter's create/update/search operations around that
// translation.
package generator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/abcnetworks/crm-sdk/pkg/codec"
	"github.com/abcnetworks/crm-sdk/pkg/crm"
	"github.com/abcnetworks/crm-sdk/pkg/mapping"
)

// Generator is the translation engine for one entity kind. It is
// stateless per call and safe for concurrent use.
type Generator struct {
	entityType     string
	guidField      string
	creationSource string
	required       map[string]struct{}
	protected      map[CrudType]map[string]struct{}
	table          *mapping.Table
	codec          *codec.Registry
}

// New builds a Generator from an entity kind's configuration.
func New(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	registry := cfg.Codec
	if registry == nil {
		registry = codec.NewRegistry()
	}
	required := make(map[string]struct{}, len(cfg.RequiredFields))
	for _, field := range cfg.RequiredFields {
		required[field] = struct{}{}
	}
	return &Generator{
		entityType:     cfg.EntityType,
		guidField:      cfg.GuidField,
		creationSource: cfg.CreationSourceValue,
		required:       required,
		protected:      cfg.protectedSets(),
		table:          cfg.Mappings,
		codec:          registry,
	}, nil
}

// EntityType returns the CRM entity kind tag this generator serves.
func (g *Generator) EntityType() string {
	return g.entityType
}

// GuidField returns the name of the typed field holding the record
// identity.
func (g *Generator) GuidField() string {
	return g.guidField
}

// CreationSourceValue returns the numeric-string creation source code
// configured for this entity kind. Services stamp it on the records
// they build; the engine itself never injects it.
func (g *Generator) CreationSourceValue() string {
	return g.creationSource
}

// BuildEntity turns a typed entity into the generic record sent to the
// adapter for the given operation. Fields protected for the operation
// are left out; fields in alreadyEmptyFields that still resolve to
// empty are skipped so no spurious deletions are sent.
func (g *Generator) BuildEntity(entity any, crudType CrudType, alreadyEmptyFields []string) (*crm.Entity, error) {
	pairs, err := g.buildPairs(entity, crudType, alreadyEmptyFields)
	if err != nil {
		return nil, err
	}
	return &crm.Entity{EntityType: g.entityType, Fields: pairs}, nil
}

func (g *Generator) buildPairs(entity any, crudType CrudType, alreadyEmptyFields []string) ([]*crm.KeyValuePair, error) {
	alreadyEmpty := make(map[string]struct{}, len(alreadyEmptyFields))
	for _, field := range alreadyEmptyFields {
		alreadyEmpty[field] = struct{}{}
	}
	protected := g.protected[crudType]

	pairs := make([]*crm.KeyValuePair, 0, len(g.table.Fields()))
	for _, field := range g.table.Fields() {
		if _, skip := protected[field]; skip {
			continue
		}
		fieldType, err := codec.TypeOf(entity, field)
		if err != nil {
			return nil, err
		}
		value, err := g.codec.Decode(entity, field, fieldType, false)
		if err != nil {
			return nil, err
		}
		// unset wrappers, zero numerics and false all collapse to the
		// empty string the adapter treats as a deletion
		if codec.IsEmpty(value) {
			value = nil
		}
		if _, req := g.required[field]; req && value == nil {
			return nil, fmt.Errorf("%w: the field %q cannot be left blank or deleted", ErrRequiredFieldEmpty, field)
		}
		if _, was := alreadyEmpty[field]; was && value == nil {
			continue
		}
		pair, err := g.buildPair(field, value)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (g *Generator) buildPair(field string, value any) (*crm.KeyValuePair, error) {
	if value == nil {
		return g.buildDeletionPair(field)
	}
	if g.table.IsReference(field) {
		return g.buildLinkedPair(field, value)
	}
	key, ok := g.table.Key(field)
	if !ok {
		return nil, fmt.Errorf("%w: no generic key configured for field %q", ErrMissingMapping, field)
	}
	return newTypedPair(key, value)
}

// buildDeletionPair emits the empty-valued pair that makes the adapter
// clear a field. Reference fields delete through their navigation
// property and keep the linked-entity annotation.
func (g *Generator) buildDeletionPair(field string) (*crm.KeyValuePair, error) {
	if navigationKey, ok := g.table.NavigationKey(field); ok {
		linked, err := g.writeLinkedEntity(field)
		if err != nil {
			return nil, err
		}
		return &crm.KeyValuePair{Key: navigationKey, Value: "", LinkedEntity: linked}, nil
	}
	key, ok := g.table.Key(field)
	if !ok {
		return nil, fmt.Errorf("%w: no generic key configured for field %q", ErrMissingMapping, field)
	}
	return &crm.KeyValuePair{Key: key, Value: ""}, nil
}

func (g *Generator) buildLinkedPair(field string, value any) (*crm.KeyValuePair, error) {
	navigationKey, ok := g.table.NavigationKey(field)
	if !ok {
		return nil, fmt.Errorf("%w: no navigation property configured for field %q", ErrMissingMapping, field)
	}
	linked, err := g.writeLinkedEntity(field)
	if err != nil {
		return nil, err
	}
	pair, err := newTypedPair(navigationKey, value)
	if err != nil {
		return nil, err
	}
	pair.LinkedEntity = linked
	return pair, nil
}

// writeLinkedEntity resolves the linked entity kind used for writes:
// the first configured kind, normalized to exactly one leading "/".
// Bare names are preferred; the "/"-prefixed form is accepted for
// backwards compatibility.
func (g *Generator) writeLinkedEntity(field string) (string, error) {
	linked, ok := g.table.LinkedEntities(field)
	if !ok || len(linked) == 0 || linked[0] == "" {
		return "", fmt.Errorf("%w: no linked entity configured for field %q", ErrMissingMapping, field)
	}
	return "/" + strings.TrimLeft(linked[0], "/"), nil
}

// newTypedPair builds a pair whose typed mirror is chosen by the
// resolved value's native type, not the source field's type tag.
func newTypedPair(key string, value any) (*crm.KeyValuePair, error) {
	pair := &crm.KeyValuePair{Key: key, Value: codec.ValueString(value)}
	switch v := value.(type) {
	case string:
		pair.StrValue = wrapperspb.String(v)
	case int64:
		pair.IntValue = wrapperspb.UInt64(uint64(v))
	case float64:
		pair.FloatValue = wrapperspb.Double(v)
	case bool:
		pair.BoolValue = wrapperspb.Bool(v)
	default:
		return nil, fmt.Errorf("%w: no key/value wrapper registered for %T", ErrUnsupportedOutputType, value)
	}
	return pair, nil
}

// Create builds the create payload for the entity, submits it, and
// decodes the adapter's response into a fresh entity of the same type.
func (g *Generator) Create(ctx context.Context, gateway crm.Gateway, entity any) (any, error) {
	record, err := g.BuildEntity(entity, CrudCreate, nil)
	if err != nil {
		return nil, err
	}
	response, err := gateway.CreateEntity(ctx, &crm.CreateEntityRequest{Entity: record})
	if err != nil {
		return nil, err
	}
	if response == nil || response.Entity == nil {
		return nil, errors.New("empty create response from crm adapter")
	}
	return g.DecodeEntity(entity, response.Entity)
}

// Update builds the update payload for the entity and submits it with
// the guid attached. When existing is supplied, its payload is built
// the same way and any (key, value) pair already present there is
// dropped; if nothing remains the update is a no-op and existing is
// returned without calling the adapter.
func (g *Generator) Update(ctx context.Context, gateway crm.Gateway, entity any, guid string, alreadyEmptyFields []string, existing any) (any, error) {
	record, err := g.BuildEntity(entity, CrudUpdate, alreadyEmptyFields)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existingRecord, err := g.BuildEntity(existing, CrudUpdate, alreadyEmptyFields)
		if err != nil {
			return nil, err
		}
		record.Fields = diffPairs(record.Fields, existingRecord.Fields)
		if len(record.Fields) == 0 {
			log.Debug().Str("entity_type", g.entityType).Str("guid", guid).
				Msg("update payload empty after diff, skipping adapter call")
			return existing, nil
		}
	}

	record.Guid = &crm.FormattedGuid{Value: guid}
	response, err := gateway.UpdateEntity(ctx, &crm.UpdateEntityRequest{Entity: record})
	if err != nil {
		return nil, err
	}
	if response == nil || response.Entity == nil {
		return nil, errors.New("empty update response from crm adapter")
	}
	return g.DecodeEntity(entity, response.Entity)
}

// diffPairs keeps only the pairs whose (key, value) tuple is not
// present in the existing payload.
func diffPairs(pairs, existing []*crm.KeyValuePair) []*crm.KeyValuePair {
	type pairKey struct {
		key   string
		value string
	}
	seen := make(map[pairKey]struct{}, len(existing))
	for _, pair := range existing {
		seen[pairKey{pair.Key, pair.Value}] = struct{}{}
	}
	changed := make([]*crm.KeyValuePair, 0, len(pairs))
	for _, pair := range pairs {
		if _, unchanged := seen[pairKey{pair.Key, pair.Value}]; !unchanged {
			changed = append(changed, pair)
		}
	}
	return changed
}

// AlreadyEmptyFields lists the mapped fields of an existing entity
// that resolve to empty, for use as the alreadyEmptyFields argument of
// Update.
func (g *Generator) AlreadyEmptyFields(entity any) ([]string, error) {
	var empty []string
	for _, field := range g.table.Fields() {
		fieldType, err := codec.TypeOf(entity, field)
		if err != nil {
			return nil, err
		}
		value, err := g.codec.Decode(entity, field, fieldType, false)
		if err != nil {
			return nil, err
		}
		if codec.IsEmpty(value) {
			empty = append(empty, field)
		}
	}
	return empty, nil
}

// ValidateEntityType checks a generic record's kind tag against the
// generator's configured kind.
func (g *Generator) ValidateEntityType(record *crm.Entity) error {
	if record.EntityType != g.entityType {
		return fmt.Errorf("%w: record is %q but this generator serves %q",
			ErrEntityTypeMismatch, record.EntityType, g.entityType)
	}
	return nil
}

type fieldValues struct {
	value          any
	hasValue       bool
	formattedValue string
}

// groupFormattedValues associates every "@OData..." display pair with
// its base key so decoding sees value and display together.
func groupFormattedValues(pairs []*crm.KeyValuePair) map[string]*fieldValues {
	grouped := make(map[string]*fieldValues, len(pairs))
	get := func(key string) *fieldValues {
		if grouped[key] == nil {
			grouped[key] = &fieldValues{}
		}
		return grouped[key]
	}
	for _, pair := range pairs {
		value, ok := pair.TypedValue()
		if !ok {
			value = pair.Value
		}
		base, suffix, found := strings.Cut(pair.Key, "@")
		if found && "@"+suffix == crm.FormattedValueSuffix {
			get(base).formattedValue, _ = value.(string)
			continue
		}
		v := get(pair.Key)
		v.value = value
		v.hasValue = true
	}
	return grouped
}

// DecodeEntity turns a generic record from the adapter into a fresh
// typed entity of the same type as prototype (a pointer to the
// service's entity struct). Keys with no reverse mapping are ignored;
// the adapter is free to grow fields this SDK does not know about.
func (g *Generator) DecodeEntity(prototype any, record *crm.Entity) (any, error) {
	prototypeType := reflect.TypeOf(prototype)
	if prototypeType == nil || prototypeType.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("%w: prototype must be a pointer to an entity struct, got %T",
			codec.ErrUnknownField, prototype)
	}
	entity := reflect.New(prototypeType.Elem()).Interface()

	reverse := g.table.Reverse()
	for key, values := range groupFormattedValues(record.Fields) {
		field, ok := reverse[key]
		if !ok || !values.hasValue {
			continue
		}
		fieldType, err := codec.TypeOf(entity, field)
		if err != nil {
			return nil, err
		}
		if err := g.codec.Encode(entity, field, fieldType, codec.ValueString(values.value), values.formattedValue); err != nil {
			return nil, err
		}
	}
	return entity, nil
}
