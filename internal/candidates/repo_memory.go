package candidates

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores candidates in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Candidate
	byEmailKey map[string]string // email key → candidate id
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Candidate),
		byEmailKey: make(map[string]string),
	}
}

// Create stores a new candidate. Duplicate email keys are rejected so the
// upsert idempotency contract holds under concurrent inserts.
func (r *MemoryRepo) Create(ctx context.Context, candidate Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if key := EmailKey(candidate.Email); key != "" {
		if _, exists := r.byEmailKey[key]; exists {
			return ErrDuplicateKey
		}
		r.byEmailKey[key] = candidate.ID
	}
	r.byID[candidate.ID] = candidate
	return nil
}

// Update replaces an existing candidate record.
func (r *MemoryRepo) Update(ctx context.Context, candidate Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[candidate.ID]
	if !ok {
		return ErrNotFound
	}
	if oldKey := EmailKey(existing.Email); oldKey != "" {
		delete(r.byEmailKey, oldKey)
	}
	if key := EmailKey(candidate.Email); key != "" {
		r.byEmailKey[key] = candidate.ID
	}
	r.byID[candidate.ID] = candidate
	return nil
}

// GetByID returns a candidate by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	candidate, ok := r.byID[id]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return candidate, nil
}

// GetByEmailKey resolves a candidate by normalized e-mail.
func (r *MemoryRepo) GetByEmailKey(ctx context.Context, emailKey string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmailKey[emailKey]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return r.byID[id], nil
}

// ListByNameKey returns all candidates whose folded name matches.
func (r *MemoryRepo) ListByNameKey(ctx context.Context, nameKey string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Candidate{}
	for _, c := range r.byID {
		if NameKey(c.Name) == nameKey {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// List returns all candidates ordered by ID.
func (r *MemoryRepo) List(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Candidate, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
