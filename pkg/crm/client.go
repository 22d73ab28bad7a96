package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/metadata"
)

const (
	headerCallerID = "crm-adapter-caller-id"

	methodCreateEntity   = "/abc.adapter.crm.v1.CrmService/CreateCrmEntity"
	methodUpdateEntity   = "/abc.adapter.crm.v1.CrmService/UpdateCrmEntity"
	methodSearchEntities = "/abc.adapter.crm.v1.CrmService/SearchCrmEntities"
)

// ClientV1 represents version 1 of the CRM adapter client.
type ClientV1 struct {
	grpcClient *GRPCClient
	callerId   string
}

// NewClientV1 creates a new instance of the CRM adapter client (v1)
func NewClientV1(config *Config, timing func(name string, value time.Duration, tags []string), count func(name string, value int64, tags []string)) *ClientV1 {
	validateConfig(config)

	conn := NewConnFromConfig(config, "crm-adapter", timing, count)

	return &ClientV1{
		grpcClient: conn,
		callerId:   config.CallerId,
	}
}

// CreateEntity creates a generic entity in the CRM store
func (c *ClientV1) CreateEntity(ctx context.Context, request *CreateEntityRequest) (*CreateEntityResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if request == nil || request.Entity == nil {
		return nil, errors.New("create request entity cannot be nil")
	}

	ctx = c.withAuthMetadata(ctx)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	response := &CreateEntityResponse{}
	if err := c.grpcClient.Invoke(ctx, methodCreateEntity, request, response); err != nil {
		return nil, fmt.Errorf("failed to create crm entity: %w", err)
	}
	return response, nil
}

// UpdateEntity updates a generic entity, addressed by its guid
func (c *ClientV1) UpdateEntity(ctx context.Context, request *UpdateEntityRequest) (*UpdateEntityResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if request == nil || request.Entity == nil {
		return nil, errors.New("update request entity cannot be nil")
	}

	ctx = c.withAuthMetadata(ctx)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	response := &UpdateEntityResponse{}
	if err := c.grpcClient.Invoke(ctx, methodUpdateEntity, request, response); err != nil {
		return nil, fmt.Errorf("failed to update crm entity: %w", err)
	}
	return response, nil
}

// SearchEntities runs a generic search against the CRM store
func (c *ClientV1) SearchEntities(ctx context.Context, request *SearchEntitiesRequest) (*SearchEntitiesResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if request == nil {
		return nil, errors.New("search request cannot be nil")
	}

	ctx = c.withAuthMetadata(ctx)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	response := &SearchEntitiesResponse{}
	if err := c.grpcClient.Invoke(ctx, methodSearchEntities, request, response); err != nil {
		return nil, fmt.Errorf("failed to search crm entities: %w", err)
	}
	return response, nil
}

// withAuthMetadata adds authentication metadata to context
func (c *ClientV1) withAuthMetadata(ctx context.Context) context.Context {
	md := metadata.New(map[string]string{
		headerCallerID: c.callerId,
	})
	return metadata.NewOutgoingContext(ctx, md)
}

// withTimeout adds timeout to context
func (c *ClientV1) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(c.grpcClient.DeadLine) * time.Millisecond
	return context.WithTimeout(ctx, timeout)
}

func validateConfig(config *Config) {
	if config == nil {
		panic("Configuration is nil. Please provide a valid config.")
	}
	if len(config.Host) == 0 {
		panic("Configuration error: Host is empty. Please provide a valid host.")
	}
	if len(config.Port) == 0 {
		panic("Configuration error: Port is empty. Please provide a valid port.")
	}
	if len(config.CallerId) == 0 {
		panic("Configuration error: Caller ID is empty. Please provide a valid caller ID.")
	}
}
