package recycling

import "github.com/cockroachdb/errors"

// Failure taxonomy for the pickup workflow. Handlers map these onto HTTP
// statuses; anything else is treated as an internal error.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrProductUnavailable   = errors.New("product unavailable")
	ErrAssignmentImpossible = errors.New("no delivery agent could be assigned")
	ErrAlreadyCompleted     = errors.New("request already in a terminal state")
)
