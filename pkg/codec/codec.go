package codec

import (
	"fmt"
	"reflect"
	"strconv"
)

// FieldType tags the kind of an entity field. Plain scalars use the
// fixed tags below; formatted wrapper kinds and service-defined
// enumerations use the name of their Go type, which is also the tag a
// custom Handler must be registered under.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"

	TypeGuid           FieldType = "FormattedGuid"
	TypeFormattedInt   FieldType = "FormattedInt"
	TypeFormattedStr   FieldType = "FormattedStr"
	TypeTimestamp      FieldType = "FormattedTimestamp"
	TypeWorkRegion     FieldType = "WorkRegion"
	TypeCreationSource FieldType = "CreationSource"
)

// DecodeFunc extracts the generic value from a field's native value.
// A nil result means the field is unset (zero sentinel); callers treat
// it as empty.
type DecodeFunc func(value any) (any, error)

// EncodeFunc writes a generic value (and its display counterpart) into
// a settable entity field, replacing it wholesale.
type EncodeFunc func(field reflect.Value, value, formattedValue string) error

// Handler converts one field kind in both directions.
type Handler struct {
	Decode DecodeFunc
	Encode EncodeFunc
}

// Registry dispatches field conversion by FieldType. The zero registry
// is not usable; NewRegistry installs the built-in handlers. Calling
// services register handlers for their own enumeration kinds on a
// Clone so registries stay immutable once a generator holds them.
type Registry struct {
	handlers map[FieldType]Handler
}

// NewRegistry returns a registry with handlers for all built-in field
// kinds installed.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[FieldType]Handler)}
	registerBuiltins(r)
	return r
}

// Register installs a handler for the given field type, replacing any
// existing one.
func (r *Registry) Register(fieldType FieldType, handler Handler) {
	r.handlers[fieldType] = handler
}

// Clone returns a copy of the registry that can be extended without
// affecting the original.
func (r *Registry) Clone() *Registry {
	clone := &Registry{handlers: make(map[FieldType]Handler, len(r.handlers))}
	for t, h := range r.handlers {
		clone.handlers[t] = h
	}
	return clone
}

// DecodeValue converts a field's native value into its generic
// representation. A nil result means the value is unset. When forSearch
// is set, plain string values are wrapped in single quotes for the
// adapter's query-string encoding.
func (r *Registry) DecodeValue(value any, fieldType FieldType, forSearch bool) (any, error) {
	handler, ok := r.handlers[fieldType]
	if !ok || handler.Decode == nil {
		return nil, fmt.Errorf("%w: no decode handler registered for %q", ErrUnsupportedType, fieldType)
	}
	decoded, err := handler.Decode(value)
	if err != nil {
		return nil, err
	}
	if forSearch && fieldType == TypeString {
		if s, ok := decoded.(string); ok {
			decoded = "'" + s + "'"
		}
	}
	return decoded, nil
}

// Decode reads the named field off the entity and converts it via
// DecodeValue.
func (r *Registry) Decode(entity any, fieldName string, fieldType FieldType, forSearch bool) (any, error) {
	value, err := FieldValue(entity, fieldName)
	if err != nil {
		return nil, err
	}
	return r.DecodeValue(value, fieldType, forSearch)
}

// Encode parses the generic value per the field's type and writes it,
// together with its display counterpart, into the named field of the
// entity. The entity must be a pointer to a struct.
func (r *Registry) Encode(entity any, fieldName string, fieldType FieldType, value, formattedValue string) error {
	handler, ok := r.handlers[fieldType]
	if !ok || handler.Encode == nil {
		return fmt.Errorf("%w: no encode handler registered for %q", ErrUnsupportedType, fieldType)
	}
	field, err := settableField(entity, fieldName)
	if err != nil {
		return err
	}
	return handler.Encode(field, value, formattedValue)
}

// TypeOf derives the field type tag of the named field from the
// entity's Go type. Plain scalar kinds map onto the fixed tags; any
// other field uses its (dereferenced) type name.
func TypeOf(entity any, fieldName string) (FieldType, error) {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	sf, ok := t.FieldByName(fieldName)
	if !ok {
		return "", fmt.Errorf("%w: %s has no field %q", ErrUnknownField, t.Name(), fieldName)
	}
	ft := sf.Type
	switch ft.Kind() {
	case reflect.String:
		return TypeString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TypeInt, nil
	case reflect.Float32, reflect.Float64:
		return TypeFloat, nil
	case reflect.Bool:
		return TypeBool, nil
	}
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	return FieldType(ft.Name()), nil
}

// FieldValue reads the named field off the entity. Integer kinds are
// normalized to int64 and float kinds to float64 so decode handlers see
// one representation.
func FieldValue(entity any, fieldName string) (any, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	f := v.FieldByName(fieldName)
	if !f.IsValid() {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, v.Type().Name(), fieldName)
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int(), nil
	case reflect.Float32, reflect.Float64:
		return f.Float(), nil
	}
	return f.Interface(), nil
}

func settableField(entity any, fieldName string) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: entity must be a pointer to a struct, got %T", ErrUnknownField, entity)
	}
	f := v.Elem().FieldByName(fieldName)
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, fmt.Errorf("%w: %s has no settable field %q", ErrUnknownField, v.Elem().Type().Name(), fieldName)
	}
	return f, nil
}

// IsEmpty reports whether a decoded value resolves to "empty" for
// payload purposes: unset wrappers, empty strings, zero numerics, and
// false all collapse to the empty string the adapter treats as a field
// deletion.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case int64:
		return v == 0
	case float64:
		return v == 0
	case bool:
		return !v
	}
	return false
}

// ValueString renders a decoded value in its canonical string form.
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprintf("%v", value)
}
