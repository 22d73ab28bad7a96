package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ticketPriority int32

const (
	priorityUnspecified ticketPriority = iota
	priorityLow
	priorityHigh
)

var (
	priorityByCrmValue = map[int64]ticketPriority{
		0:         priorityUnspecified,
		100000001: priorityLow,
		100000002: priorityHigh,
	}
	crmValueByPriority = map[ticketPriority]int64{
		priorityUnspecified: 0,
		priorityLow:         100000001,
		priorityHigh:        100000002,
	}
)

func TestEnumValueFromString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    ticketPriority
		wantErr error
	}{
		{name: "mapped value", value: "100000002", want: priorityHigh},
		{name: "empty value is zero", value: "", want: priorityUnspecified},
		{name: "not a number", value: "high", wantErr: ErrInvalidFieldValue},
		{name: "unmapped value", value: "42", wantErr: ErrUnmappedEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnumValueFromString("Priority", tt.value, priorityByCrmValue, "ticketPriority")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringFromEnumValue(t *testing.T) {
	got, err := StringFromEnumValue(priorityLow, crmValueByPriority, "ticketPriority", nil)
	assert.NoError(t, err)
	assert.Equal(t, "100000001", got)

	got, err = StringFromEnumValue(priorityUnspecified, crmValueByPriority, "ticketPriority", nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = StringFromEnumValue(ticketPriority(99), crmValueByPriority, "ticketPriority", nil)
	assert.ErrorIs(t, err, ErrUnmappedEnum)
	assert.Contains(t, err.Error(), "99")

	_, err = StringFromEnumValue(ticketPriority(99), crmValueByPriority, "ticketPriority",
		func(ticketPriority) string { return "PRIORITY_MYSTERY" })
	assert.ErrorIs(t, err, ErrUnmappedEnum)
	assert.Contains(t, err.Error(), "PRIORITY_MYSTERY")
}
