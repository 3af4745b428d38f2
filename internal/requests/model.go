package requests

import (
	"time"

	"skillmatch-backend/internal/candidates"
	"skillmatch-backend/internal/extract"
	"skillmatch-backend/internal/matching"
)

// Request statuses. Transitions are monotonic:
// pending → processing → completed | failed, with retry re-entering
// processing from failed only.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Request intents.
const (
	IntentSearch = "search"
	IntentIngest = "ingest"
)

// Request is the asynchronous processing entity. It is created by intake,
// mutated only by the lifecycle manager, and retained for audit.
type Request struct {
	ID            string                `json:"id"`
	SourceChannel string                `json:"sourceChannel"`
	SourceUser    string                `json:"sourceUser"`
	MessageText   string                `json:"messageText"`
	AttachmentURL string                `json:"attachmentUrl,omitempty"`
	FileName      string                `json:"fileName,omitempty"`
	Intent        string                `json:"intent"`
	Status        string                `json:"status"`
	Requirement   *matching.Requirement `json:"requirement,omitempty"`
	Limit         int                   `json:"limit,omitempty"`
	Extracted     *extract.Result       `json:"extracted,omitempty"`
	Result        *Result               `json:"result,omitempty"`
	ErrorCode     string                `json:"errorCode,omitempty"`
	ErrorMessage  string                `json:"errorMessage,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	ProcessedAt   *time.Time            `json:"processedAt,omitempty"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// Result is the composed response payload attached to a completed request.
type Result struct {
	Matches          []matching.MatchResult `json:"matches"`
	CandidateOutcome *candidates.Outcome    `json:"candidateOutcome,omitempty"`
	Summary          string                 `json:"summary"`
	ProcessingTimeMs float64                `json:"processingTimeMs"`
}
