package generator

import "errors"

var (
	// ErrRequiredFieldEmpty is returned when a required field resolves to empty at create/update
	ErrRequiredFieldEmpty = errors.New("required field is empty")

	// ErrMissingMapping is returned when a reference field lacks a navigation property or linked entity
	ErrMissingMapping = errors.New("missing field mapping")

	// ErrUnsupportedOutputType is returned when a resolved value's type has no key/value wrapper
	ErrUnsupportedOutputType = errors.New("unsupported output value type")

	// ErrInvalidFields is returned when a search requests return fields outside the configured set
	ErrInvalidFields = errors.New("invalid fields to return")

	// ErrEntityTypeMismatch is returned when a generic record's kind tag does not match the generator's
	ErrEntityTypeMismatch = errors.New("entity type mismatch")

	// ErrInvalidConfig is returned when a generator configuration is unusable
	ErrInvalidConfig = errors.New("invalid generator config")
)
