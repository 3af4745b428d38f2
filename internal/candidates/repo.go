package candidates

import "context"

// Repo defines persistence operations for candidates.
type Repo interface {
	Create(ctx context.Context, candidate Candidate) error
	Update(ctx context.Context, candidate Candidate) error
	GetByID(ctx context.Context, id string) (Candidate, error)
	GetByEmailKey(ctx context.Context, emailKey string) (Candidate, error)
	ListByNameKey(ctx context.Context, nameKey string) ([]Candidate, error)
	List(ctx context.Context) ([]Candidate, error)
}
