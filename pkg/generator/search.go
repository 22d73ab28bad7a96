package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abcnetworks/crm-sdk/pkg/codec"
	"github.com/abcnetworks/crm-sdk/pkg/crm"
)

// Criterion is one field predicate expressed in domain terms: the
// typed field name, a comparison, and a native Go value.
type Criterion struct {
	Field string
	Match crm.Match
	Value any
}

// CriteriaGroup is a conjunction of criteria. A record matches the
// group when it satisfies every criterion in it.
type CriteriaGroup struct {
	AllOf []Criterion
}

// Search is a domain-level query: a disjunction of criteria groups
// plus result shaping.
type Search struct {
	AnyOf          []CriteriaGroup
	Limit          int32
	ReturnAll      bool
	FieldsToReturn []string
}

// TranslateSearch rewrites a domain search into the adapter's request
// form. Field names become generic keys, values get the adapter's
// quoting rules, timestamp equality becomes a one-second half-open
// range, and guid values are stripped of the string quoting they would
// otherwise pick up.
func (g *Generator) TranslateSearch(search Search, prototype any) (*crm.SearchEntitiesRequest, error) {
	if err := g.validateFieldsToReturn(search.FieldsToReturn); err != nil {
		return nil, err
	}

	groups := make([]*crm.EntitySearch, 0, len(search.AnyOf))
	for _, group := range search.AnyOf {
		criteria := make([]*crm.Criterion, 0, len(group.AllOf))
		for _, criterion := range group.AllOf {
			translated, err := g.translateCriterion(criterion, prototype)
			if err != nil {
				return nil, err
			}
			criteria = append(criteria, translated...)
		}
		groups = append(groups, &crm.EntitySearch{Criteria: criteria})
	}

	// guid values must reach the adapter bare; string translation will
	// have quoted them when the typed guid field is a plain string
	for _, group := range groups {
		for _, criterion := range group.Criteria {
			if criterion.FieldName == g.guidField {
				criterion.FieldValue = unquote(criterion.FieldValue)
			}
		}
	}

	request := &crm.SearchEntitiesRequest{
		EntityType: g.entityType,
		Search:     groups,
		Limit:      search.Limit,
		ReturnAll:  search.ReturnAll,
	}
	if !search.ReturnAll {
		request.FieldsToReturn = g.returnKeys(search.FieldsToReturn)
	}
	return request, nil
}

// Search translates the query, submits it, and decodes every returned
// record into a typed entity.
func (g *Generator) Search(ctx context.Context, gateway crm.Gateway, search Search, prototype any) ([]any, error) {
	request, err := g.TranslateSearch(search, prototype)
	if err != nil {
		return nil, err
	}
	response, err := gateway.SearchEntities(ctx, request)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, errors.New("empty search response from crm adapter")
	}
	entities := make([]any, 0, len(response.Entities))
	for _, record := range response.Entities {
		entity, err := g.DecodeEntity(prototype, record)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (g *Generator) translateCriterion(criterion Criterion, prototype any) ([]*crm.Criterion, error) {
	key, ok := g.table.Key(criterion.Field)
	if !ok {
		return nil, fmt.Errorf("%w: no generic key configured for field %q", ErrMissingMapping, criterion.Field)
	}
	fieldType, err := codec.TypeOf(prototype, criterion.Field)
	if err != nil {
		return nil, err
	}
	value, err := g.codec.DecodeValue(criterion.Value, fieldType, true)
	if err != nil {
		return nil, err
	}
	text := codec.ValueString(value)

	// equality on a timestamp would only ever match the exact second,
	// so rewrite it as [t, t+1s)
	if fieldType == codec.TypeTimestamp && criterion.Match == crm.MatchEqual {
		t, err := time.Parse(codec.DateLayout, text)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot parse timestamp %q for field %q",
				codec.ErrInvalidFieldValue, text, criterion.Field)
		}
		return []*crm.Criterion{
			{Match: crm.MatchGreaterThanOrEqual, FieldName: key, FieldValue: text},
			{Match: crm.MatchLessThan, FieldName: key, FieldValue: t.Add(time.Second).UTC().Format(codec.DateLayout)},
		}, nil
	}

	return []*crm.Criterion{{Match: criterion.Match, FieldName: key, FieldValue: text}}, nil
}

func (g *Generator) validateFieldsToReturn(fields []string) error {
	var invalid []string
	for _, field := range fields {
		if !g.table.HasField(field) {
			invalid = append(invalid, field)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFields, strings.Join(invalid, ", "))
	}
	return nil
}

func (g *Generator) returnKeys(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		if key, ok := g.table.Key(field); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// unquote removes the single quoting string values pick up during
// search translation. Guid comparisons on the adapter side want the
// bare value.
func unquote(value string) string {
	value = strings.TrimPrefix(value, "'")
	return strings.TrimSuffix(value, "'")
}
