package recycling

import (
	"context"
	"time"

	"ewaste-marketplace-api-server/internal/models"
)

// RequestPatch is a partial update applied to a recycle request. Zero-valued
// fields are left unchanged, except UpdatedAt which is always written.
type RequestPatch struct {
	Status        string
	PaymentStatus string
	DeliveryAgent *models.AgentSnapshot
	UpdatedAt     time.Time
}

// Store is the document-store port the workflow runs against. All lookups
// return ErrNotFound (possibly wrapped) when the record does not exist.
type Store interface {
	ProductByID(ctx context.Context, productID string) (*models.Product, error)
	SetProductsPending(ctx context.Context, productIDs []string, at time.Time) error
	SetProductsAvailable(ctx context.Context, productIDs []string, at time.Time) error
	SetProductsRecycled(ctx context.Context, productIDs []string, recyclerUserID string, at time.Time) error

	ListAgents(ctx context.Context) ([]models.DeliveryAgent, error)
	AgentByID(ctx context.Context, agentID string) (*models.DeliveryAgent, error)
	InsertAgent(ctx context.Context, agent *models.DeliveryAgent) error
	// AppendAssignment appends the entry to the agent's schedule iff the
	// agent's scheduleVersion still equals version. Returns false on a
	// version conflict so the caller can re-select. Appending an entry whose
	// requestID is already scheduled is a successful no-op.
	AppendAssignment(ctx context.Context, agentID string, version int64, entry models.AgentAssignment) (bool, error)
	// RemoveAssignment drops the entry with the given requestID. A missing
	// entry is a no-op; a missing agent returns ErrNotFound.
	RemoveAssignment(ctx context.Context, agentID, requestID string) error

	InsertRequest(ctx context.Context, req *models.RecycleRequest) error
	RequestByID(ctx context.Context, requestID string) (*models.RecycleRequest, error)
	RequestsByUser(ctx context.Context, userID string) ([]models.RecycleRequest, error)
	PatchRequest(ctx context.Context, requestID string, patch RequestPatch) error

	UserByID(ctx context.Context, userID string) (*models.User, error)
}
