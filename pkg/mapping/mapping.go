// Package mapping holds the declarative field translation table that
// associates a typed entity field with its generic CRM key, the
// navigation property used when the field references another entity,
// and the entity kind(s) it may reference.
package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMapping is returned when a table row is internally inconsistent
	ErrInvalidMapping = errors.New("invalid field mapping")
)

// FieldMapping is one row of the translation table.
//
// NavigationKey and LinkedEntities come as a pair: both set means the
// field references another entity and is written through its
// navigation property; both empty means a regular field. When more
// than one linked entity kind is allowed, the first is used for
// create/update operations.
type FieldMapping struct {
	Field          string
	Key            string
	NavigationKey  string
	LinkedEntities []string
}

// Table is the immutable, construction-time-derived view set over an
// ordered list of FieldMapping rows. Safe for concurrent readers.
type Table struct {
	fields         []string
	keys           map[string]string
	navigation     map[string]string
	linked         map[string][]string
	fullNavigation map[string]string
	fullLinked     map[string][]string
}

// NewTable validates the rows and derives the lookup views.
func NewTable(rows []FieldMapping) (*Table, error) {
	t := &Table{
		fields:         make([]string, 0, len(rows)),
		keys:           make(map[string]string, len(rows)),
		navigation:     make(map[string]string),
		linked:         make(map[string][]string),
		fullNavigation: make(map[string]string, len(rows)),
		fullLinked:     make(map[string][]string, len(rows)),
	}
	for _, row := range rows {
		if row.Field == "" || row.Key == "" {
			return nil, fmt.Errorf("%w: row %+v needs both a field and a key", ErrInvalidMapping, row)
		}
		if _, dup := t.keys[row.Field]; dup {
			return nil, fmt.Errorf("%w: duplicate row for field %q", ErrInvalidMapping, row.Field)
		}
		if (row.NavigationKey == "") != (len(row.LinkedEntities) == 0) {
			return nil, fmt.Errorf("%w: field %q must set navigation key and linked entity together",
				ErrInvalidMapping, row.Field)
		}
		t.fields = append(t.fields, row.Field)
		t.keys[row.Field] = row.Key
		t.fullNavigation[row.Field] = row.NavigationKey
		t.fullLinked[row.Field] = row.LinkedEntities
		if row.NavigationKey != "" {
			t.navigation[row.Field] = row.NavigationKey
			t.linked[row.Field] = row.LinkedEntities
		}
	}
	return t, nil
}

// Fields returns the typed field names in table order.
func (t *Table) Fields() []string {
	return t.fields
}

// HasField reports whether the field is part of the configured set,
// reference semantics or not.
func (t *Table) HasField(field string) bool {
	_, ok := t.keys[field]
	return ok
}

// Key returns the generic key for a field.
func (t *Table) Key(field string) (string, bool) {
	k, ok := t.keys[field]
	return k, ok
}

// NavigationKey returns the navigation property for a reference field.
func (t *Table) NavigationKey(field string) (string, bool) {
	k, ok := t.navigation[field]
	return k, ok
}

// LinkedEntities returns the entity kinds a reference field may point
// at. The first entry is the one used for writes.
func (t *Table) LinkedEntities(field string) ([]string, bool) {
	l, ok := t.linked[field]
	return l, ok
}

// FullNavigationKeys returns the field to navigation-property view
// over every row, with empty entries kept for regular fields.
func (t *Table) FullNavigationKeys() map[string]string {
	full := make(map[string]string, len(t.fullNavigation))
	for field, key := range t.fullNavigation {
		full[field] = key
	}
	return full
}

// FullLinkedEntities returns the field to linked-entity view over
// every row, with nil entries kept for regular fields.
func (t *Table) FullLinkedEntities() map[string][]string {
	full := make(map[string][]string, len(t.fullLinked))
	for field, linked := range t.fullLinked {
		full[field] = linked
	}
	return full
}

// IsReference reports whether the field carries reference semantics.
func (t *Table) IsReference(field string) bool {
	_, ok := t.navigation[field]
	return ok
}

// Reverse builds a generic-key to typed-field map. If two rows share a
// key, the later row wins.
func (t *Table) Reverse() map[string]string {
	reverse := make(map[string]string, len(t.fields))
	for _, field := range t.fields {
		reverse[t.keys[field]] = field
	}
	return reverse
}
