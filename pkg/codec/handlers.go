package codec

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/abcnetworks/crm-sdk/pkg/crm"
)

// DateLayout is the fixed timestamp format the CRM adapter speaks.
// Times are UTC only; no offset support.
const DateLayout = "2006-01-02T15:04:05Z"

func registerBuiltins(r *Registry) {
	r.Register(TypeString, Handler{Decode: decodeString, Encode: encodeString})
	r.Register(TypeInt, Handler{Decode: decodeInt, Encode: encodeInt})
	r.Register(TypeFloat, Handler{Decode: decodeFloat, Encode: encodeFloat})
	r.Register(TypeBool, Handler{Decode: decodeBool, Encode: encodeBool})
	r.Register(TypeGuid, Handler{Decode: decodeGuid, Encode: encodeGuid})
	r.Register(TypeFormattedInt, Handler{Decode: decodeFormattedInt, Encode: encodeFormattedInt})
	r.Register(TypeFormattedStr, Handler{Decode: decodeFormattedStr, Encode: encodeFormattedStr})
	r.Register(TypeTimestamp, Handler{Decode: decodeTimestamp, Encode: encodeTimestamp})
	r.Register(TypeWorkRegion, Handler{Decode: decodeWorkRegion, Encode: encodeWorkRegion})
	r.Register(TypeCreationSource, Handler{Decode: decodeCreationSource, Encode: encodeCreationSource})
}

func decodeString(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidFieldValue, value)
	}
	return s, nil
}

func encodeString(field reflect.Value, value, _ string) error {
	field.SetString(value)
	return nil
}

func decodeInt(value any) (any, error) {
	n, ok := value.(int64)
	if !ok {
		return nil, fmt.Errorf("%w: expected int64, got %T", ErrInvalidFieldValue, value)
	}
	return n, nil
}

func encodeInt(field reflect.Value, value, _ string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expected an integer string, got %q", ErrInvalidFieldValue, value)
	}
	field.SetInt(n)
	return nil
}

func decodeFloat(value any) (any, error) {
	f, ok := value.(float64)
	if !ok {
		return nil, fmt.Errorf("%w: expected float64, got %T", ErrInvalidFieldValue, value)
	}
	return f, nil
}

func encodeFloat(field reflect.Value, value, _ string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: expected a float string, got %q", ErrInvalidFieldValue, value)
	}
	field.SetFloat(f)
	return nil
}

func decodeBool(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: expected bool, got %T", ErrInvalidFieldValue, value)
	}
	return b, nil
}

func encodeBool(field reflect.Value, value, _ string) error {
	field.SetBool(value == "true")
	return nil
}

func decodeGuid(value any) (any, error) {
	g, ok := value.(*crm.FormattedGuid)
	if !ok {
		return nil, fmt.Errorf("%w: expected *crm.FormattedGuid, got %T", ErrInvalidFieldValue, value)
	}
	if g == nil || g.Value == "" {
		return nil, nil
	}
	return g.Value, nil
}

func encodeGuid(field reflect.Value, value, formattedValue string) error {
	field.Set(reflect.ValueOf(&crm.FormattedGuid{Value: value, FormattedValue: formattedValue}))
	return nil
}

func decodeFormattedInt(value any) (any, error) {
	i, ok := value.(*crm.FormattedInt)
	if !ok {
		return nil, fmt.Errorf("%w: expected *crm.FormattedInt, got %T", ErrInvalidFieldValue, value)
	}
	if i == nil || i.Value == 0 {
		return nil, nil
	}
	return strconv.FormatInt(i.Value, 10), nil
}

func encodeFormattedInt(field reflect.Value, value, formattedValue string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expected an integer string, got %q", ErrInvalidFieldValue, value)
	}
	field.Set(reflect.ValueOf(&crm.FormattedInt{Value: n, FormattedValue: formattedValue}))
	return nil
}

func decodeFormattedStr(value any) (any, error) {
	s, ok := value.(*crm.FormattedStr)
	if !ok {
		return nil, fmt.Errorf("%w: expected *crm.FormattedStr, got %T", ErrInvalidFieldValue, value)
	}
	if s == nil {
		return nil, nil
	}
	return s.Value, nil
}

func encodeFormattedStr(field reflect.Value, value, formattedValue string) error {
	field.Set(reflect.ValueOf(&crm.FormattedStr{Value: value, FormattedValue: formattedValue}))
	return nil
}

func decodeTimestamp(value any) (any, error) {
	ts, ok := value.(*crm.FormattedTimestamp)
	if !ok {
		return nil, fmt.Errorf("%w: expected *crm.FormattedTimestamp, got %T", ErrInvalidFieldValue, value)
	}
	if ts == nil || ts.Value == nil || ts.Value.Seconds == 0 {
		return nil, nil
	}
	return time.Unix(ts.Value.Seconds, 0).UTC().Format(DateLayout), nil
}

func encodeTimestamp(field reflect.Value, value, formattedValue string) error {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return fmt.Errorf("%w: expected a %q timestamp, got %q", ErrInvalidFieldValue, DateLayout, value)
	}
	field.Set(reflect.ValueOf(&crm.FormattedTimestamp{
		Value:          &timestamppb.Timestamp{Seconds: t.Unix()},
		FormattedValue: formattedValue,
	}))
	return nil
}

func decodeWorkRegion(value any) (any, error) {
	wr, ok := value.(*crm.WorkRegion)
	if !ok {
		return nil, fmt.Errorf("%w: expected *crm.WorkRegion, got %T", ErrInvalidFieldValue, value)
	}
	if wr == nil || wr.Region == crm.WorkRegionUnspecified {
		return nil, nil
	}
	return strconv.FormatInt(int64(wr.Region), 10), nil
}

func encodeWorkRegion(field reflect.Value, value, formattedValue string) error {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: expected an integer string, got %q", ErrInvalidFieldValue, value)
	}
	// region codes are a dense 0..37 table
	if n < int64(crm.WorkRegionUnspecified) || n > int64(crm.WorkRegionSanDiego) {
		return fmt.Errorf("%w: %d does not correspond to a WorkRegion value", ErrInvalidEnumValue, n)
	}
	field.Set(reflect.ValueOf(&crm.WorkRegion{Region: crm.WorkRegionCode(n), FormattedValue: formattedValue}))
	return nil
}

func decodeCreationSource(value any) (any, error) {
	cs, ok := value.(*crm.CreationSource)
	if !ok {
		return nil, fmt.Errorf("%w: expected *crm.CreationSource, got %T", ErrInvalidFieldValue, value)
	}
	if cs == nil || cs.Source == crm.CreationSourceUnspecified {
		return nil, nil
	}
	return int64(cs.Source), nil
}

var creationSourceByValue = map[int64]crm.CreationSourceCode{
	0:         crm.CreationSourceUnspecified,
	100000011: crm.CreationSourceAcme,
}

func encodeCreationSource(field reflect.Value, value, formattedValue string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expected an integer string, got %q", ErrInvalidFieldValue, value)
	}
	source, ok := creationSourceByValue[n]
	if !ok {
		return fmt.Errorf("%w: %d does not correspond to a CreationSource value", ErrInvalidEnumValue, n)
	}
	field.Set(reflect.ValueOf(&crm.CreationSource{Source: source, FormattedValue: formattedValue}))
	return nil
}
