package requests

import (
	"context"
	"sync"
	"time"

	"skillmatch-backend/internal/extract"
)

// MemoryRepo stores requests in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Request
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Request)}
}

// Create stores the request.
func (r *MemoryRepo) Create(ctx context.Context, request Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[request.ID] = request
	return nil
}

// GetByID returns a request by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Request, error) {
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	request, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return request, nil
}

// ClaimProcessing performs the status check-and-set under the repo lock.
func (r *MemoryRepo) ClaimProcessing(ctx context.Context, id, from string) (Request, error) {
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if request.Status != from {
		return Request{}, ErrInvalidTransition
	}
	request.Status = StatusProcessing
	request.ErrorCode = ""
	request.ErrorMessage = ""
	request.UpdatedAt = time.Now().UTC()
	r.byID[id] = request
	return request, nil
}

// Complete records the extraction and composed result on a completed request.
func (r *MemoryRepo) Complete(ctx context.Context, id string, extracted *extract.Result, result *Result, processedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	request.Status = StatusCompleted
	request.Extracted = extracted
	request.Result = result
	request.ProcessedAt = &processedAt
	request.UpdatedAt = time.Now().UTC()
	r.byID[id] = request
	return nil
}

// Fail records the captured error detail on a failed request.
func (r *MemoryRepo) Fail(ctx context.Context, id, code, message string, processedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	request.Status = StatusFailed
	request.ErrorCode = code
	request.ErrorMessage = message
	request.ProcessedAt = &processedAt
	request.UpdatedAt = time.Now().UTC()
	r.byID[id] = request
	return nil
}
