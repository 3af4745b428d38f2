package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	db *sql.DB
}

// NewService constructs a new health service. db may be nil when the
// service runs on the in-memory stores.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Status returns the health payload. The database flag reflects a live
// ping, not just configuration.
func (s *Service) Status(ctx context.Context) map[string]any {
	payload := map[string]any{
		"ok":      true,
		"storage": "memory",
	}
	if s.db != nil {
		payload["storage"] = "postgres"
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			payload["ok"] = false
			payload["database"] = "unreachable"
		} else {
			payload["database"] = "ok"
		}
	}
	return payload
}
