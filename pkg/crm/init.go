package crm

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	Version1 = 1

	// V1Prefix is the viper key prefix for v1 client configuration.
	V1Prefix = "CRM_ADAPTER_CLIENT_V1_"
)

var (
	registry = make(map[int]Gateway)
	mut      sync.Mutex
)

// InitClient initialises the gateway client for the given version from
// viper configuration.
func InitClient(version int, timing func(name string, value time.Duration, tags []string), count func(name string, value int64, tags []string)) Gateway {
	mut.Lock()
	defer mut.Unlock()
	if registry[version] != nil {
		log.Panic().Msgf("CRM adapter client for version %d already initialised", version)
	}
	switch version {
	case Version1:
		conf, err := getClientConfigs(V1Prefix)
		if err != nil {
			log.Panic().Err(err).Msgf("Invalid CRM adapter client configs: %#v", conf)
		}
		registry[version] = NewClientV1(conf, timing, count)
	}
	return registry[version]
}

// GetInstance returns the gateway client for the given version
func GetInstance(version int) Gateway {
	if registry[version] == nil {
		log.Panic().Msgf("CRM adapter client for version %d not initialised", version)
	}
	return registry[version]
}
