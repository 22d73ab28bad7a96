package crm

import "context"

// Gateway is the CRM adapter boundary. Implementations own transport,
// retries, and connection lifecycle; callers treat every method as one
// opaque remote call whose errors propagate unmodified.
type Gateway interface {
	// CreateEntity creates a generic entity in the CRM store.
	CreateEntity(ctx context.Context, request *CreateEntityRequest) (*CreateEntityResponse, error)
	// UpdateEntity updates a generic entity, addressed by its guid.
	UpdateEntity(ctx context.Context, request *UpdateEntityRequest) (*UpdateEntityResponse, error)
	// SearchEntities runs a generic search against the CRM store.
	SearchEntities(ctx context.Context, request *SearchEntitiesRequest) (*SearchEntitiesResponse, error)
}
