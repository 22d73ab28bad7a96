package crm

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	Host              = "HOST"
	Port              = "PORT"
	DeadlineMS        = "DEADLINE_MS"
	PlainText         = "PLAINTEXT"
	CallerID          = "CALLER_ID"
	DefaultHost       = ""
	DefaultPort       = "8080"
	DefaultDeadlineMS = 500
	DefaultPlainText  = true
	DefaultCallerID   = ""
)

// Config holds the gRPC client configuration for the CRM adapter.
type Config struct {
	Host      string
	Port      string
	DeadLine  int
	PlainText bool
	CallerId  string
}

func getClientConfigs(prefix string) (*Config, error) {
	host := DefaultHost
	port := DefaultPort
	deadline := DefaultDeadlineMS
	plaintext := DefaultPlainText
	callerId := DefaultCallerID

	if viper.IsSet(prefix + Host) {
		host = viper.GetString(prefix + Host)
	}
	if viper.IsSet(prefix + Port) {
		port = viper.GetString(prefix + Port)
	}
	if viper.IsSet(prefix + DeadlineMS) {
		deadline = viper.GetInt(prefix + DeadlineMS)
	}
	if viper.IsSet(prefix + PlainText) {
		plaintext = viper.GetBool(prefix + PlainText)
	}
	if viper.IsSet(prefix + CallerID) {
		callerId = viper.GetString(prefix + CallerID)
	}
	conf := &Config{
		Host:      host,
		Port:      port,
		DeadLine:  deadline,
		PlainText: plaintext,
		CallerId:  callerId,
	}
	if valid, err := validConfigs(conf); !valid {
		return nil, err
	}
	return conf, nil
}

func validConfigs(configs *Config) (bool, error) {
	if configs.Host == "" {
		return false, fmt.Errorf("crm adapter host is invalid, configured value: %v", configs.Host)
	}
	if configs.Port == "" {
		return false, fmt.Errorf("crm adapter port is invalid, configured value: %v", configs.Port)
	}
	if configs.DeadLine <= 0 {
		return false, fmt.Errorf("crm adapter deadline exceed timeout is invalid, configured value: %v",
			configs.DeadLine)
	}
	if configs.CallerId == "" {
		return false, fmt.Errorf("crm adapter caller id not configured")
	}
	return true, nil
}
