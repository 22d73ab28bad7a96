package codec

import "errors"

var (
	// ErrUnsupportedType is returned when no handler is registered for a field type
	ErrUnsupportedType = errors.New("unsupported field type")

	// ErrInvalidEnumValue is returned when an integer has no entry in a closed enum table
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrUnmappedEnum is returned when an enum value is not mapped to a CRM value
	ErrUnmappedEnum = errors.New("unmapped enum value")

	// ErrInvalidFieldValue is returned when a value expected to be an integer string is not parseable
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrUnknownField is returned when an entity has no field with the requested name
	ErrUnknownField = errors.New("unknown entity field")
)
