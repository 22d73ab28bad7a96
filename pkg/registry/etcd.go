package registry

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog/log"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdConfig holds the connection settings for the configuration
// store.
type EtcdConfig struct {
	Endpoints []string
	Username  string
	Password  string
	Timeout   time.Duration
}

// Store reads entity configuration documents from etcd. Documents live
// at <prefix>/entities/<entity-type>.
type Store struct {
	client *clientv3.Client
	prefix string
}

// NewStore dials etcd and returns a store rooted at the given prefix.
func NewStore(config EtcdConfig, prefix string) (*Store, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   config.Endpoints,
		Username:    config.Username,
		Password:    config.Password,
		DialTimeout: config.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) entityPath(entityType string) string {
	return path.Join(s.prefix, "entities", entityType)
}

// Load fetches and parses the document for one entity kind.
func (s *Store) Load(ctx context.Context, entityType string) (*Document, error) {
	key := s.entityPath(entityType)
	resp, err := s.client.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity configuration from etcd: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: no configuration at %s", ErrInvalidDocument, key)
	}
	doc, err := Parse(resp.Kvs[0].Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entity configuration at %s: %w", key, err)
	}
	return doc, nil
}

// LoadAll fetches every document under the store's prefix, keyed by
// entity kind. Documents that fail to parse are logged and skipped so
// one bad document does not take down the rest.
func (s *Store) LoadAll(ctx context.Context) (map[string]*Document, error) {
	prefix := path.Join(s.prefix, "entities") + "/"
	resp, err := s.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list entity configurations from etcd: %w", err)
	}
	documents := make(map[string]*Document, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		doc, err := Parse(kv.Value)
		if err != nil {
			log.Error().Err(err).Str("key", string(kv.Key)).
				Msg("skipping unparsable entity configuration")
			continue
		}
		documents[doc.EntityType] = doc
	}
	return documents, nil
}
