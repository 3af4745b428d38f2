package requests

import (
	"context"
	"time"

	"skillmatch-backend/internal/extract"
)

// Repo defines persistence operations for requests. ClaimProcessing is the
// check-and-set that guarantees at most one concurrent execution per
// request id.
type Repo interface {
	Create(ctx context.Context, request Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	// ClaimProcessing atomically moves a request from the given status to
	// processing. It returns ErrInvalidTransition when the request is not in
	// that status.
	ClaimProcessing(ctx context.Context, id, from string) (Request, error)
	Complete(ctx context.Context, id string, extracted *extract.Result, result *Result, processedAt time.Time) error
	Fail(ctx context.Context, id, code, message string, processedAt time.Time) error
}
