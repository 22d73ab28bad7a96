package crm

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetClientConfigs(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set(V1Prefix+Host, "crm-adapter.internal")
	viper.Set(V1Prefix+Port, "9400")
	viper.Set(V1Prefix+DeadlineMS, 1500)
	viper.Set(V1Prefix+PlainText, false)
	viper.Set(V1Prefix+CallerID, "ordering-midtier")

	conf, err := getClientConfigs(V1Prefix)
	assert.NoError(t, err)
	assert.Equal(t, &Config{
		Host:      "crm-adapter.internal",
		Port:      "9400",
		DeadLine:  1500,
		PlainText: false,
		CallerId:  "ordering-midtier",
	}, conf)
}

func TestGetClientConfigsDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set(V1Prefix+Host, "crm-adapter.internal")
	viper.Set(V1Prefix+CallerID, "ordering-midtier")

	conf, err := getClientConfigs(V1Prefix)
	assert.NoError(t, err)
	assert.Equal(t, DefaultPort, conf.Port)
	assert.Equal(t, DefaultDeadlineMS, conf.DeadLine)
	assert.Equal(t, DefaultPlainText, conf.PlainText)
}

func TestGetClientConfigsInvalid(t *testing.T) {
	tests := []struct {
		name string
		set  func()
	}{
		{
			name: "missing host",
			set: func() {
				viper.Set(V1Prefix+CallerID, "ordering-midtier")
			},
		},
		{
			name: "missing caller id",
			set: func() {
				viper.Set(V1Prefix+Host, "crm-adapter.internal")
			},
		},
		{
			name: "non-positive deadline",
			set: func() {
				viper.Set(V1Prefix+Host, "crm-adapter.internal")
				viper.Set(V1Prefix+CallerID, "ordering-midtier")
				viper.Set(V1Prefix+DeadlineMS, 0)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			tt.set()
			_, err := getClientConfigs(V1Prefix)
			assert.Error(t, err)
		})
	}
}
