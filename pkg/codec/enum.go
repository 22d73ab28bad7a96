package codec

import (
	"fmt"
	"strconv"
)

// EnumValueFromString parses a CRM string value into a service-defined
// enumeration. An empty value is treated as zero. Use it inside a
// custom Handler's Encode to build the service's wrapper type.
func EnumValueFromString[E ~int32](fieldName, value string, intToEnum map[int64]E, enumName string) (E, error) {
	if value == "" {
		value = "0"
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q expected a string representation of an integer, got %q",
			ErrInvalidFieldValue, fieldName, value)
	}
	e, ok := intToEnum[n]
	if !ok {
		return 0, fmt.Errorf("%w: %d does not correspond to an enumerated %s value", ErrUnmappedEnum, n, enumName)
	}
	return e, nil
}

// StringFromEnumValue renders a service-defined enumeration as the CRM
// string value it maps to. The zero value is the "unspecified" sentinel
// and decodes to absent (nil). symbol, when non-nil, names enum values
// in error messages; otherwise the numeric value is used.
func StringFromEnumValue[E ~int32](value E, enumToInt map[E]int64, enumName string, symbol func(E) string) (any, error) {
	if value == 0 {
		return nil, nil
	}
	n, ok := enumToInt[value]
	if !ok {
		name := strconv.FormatInt(int64(value), 10)
		if symbol != nil {
			name = symbol(value)
		}
		return nil, fmt.Errorf("%w: %s.%s is not mapped to a CRM value", ErrUnmappedEnum, enumName, name)
	}
	return strconv.FormatInt(n, 10), nil
}
