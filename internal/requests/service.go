package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillmatch-backend/internal/candidates"
	"skillmatch-backend/internal/extract"
	"skillmatch-backend/internal/matching"
	"skillmatch-backend/internal/shared/metrics"
	"skillmatch-backend/internal/shared/telemetry"
	"skillmatch-backend/internal/textnorm"
)

// AttachmentLoader fetches text for a request attachment.
type AttachmentLoader interface {
	Load(ctx context.Context, url string) (string, error)
}

// Service is the request lifecycle manager. It owns the Request entity,
// drives it through its states, and invokes the pipeline components in
// sequence.
type Service struct {
	Repo        Repo
	Extractor   *extract.Extractor
	Candidates  *candidates.Service
	Matcher     *matching.Engine
	Attachments AttachmentLoader
}

// CreateInput is the intake payload for a new request.
type CreateInput struct {
	SourceChannel string
	SourceUser    string
	MessageText   string
	AttachmentURL string
	FileName      string
	Intent        string
	Requirement   *matching.Requirement
	Limit         int
}

// Create allocates a Request in pending state.
func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	if strings.TrimSpace(in.MessageText) == "" {
		return Request{}, errors.New("message text is required")
	}
	intent := strings.ToLower(strings.TrimSpace(in.Intent))
	switch intent {
	case IntentSearch, IntentIngest:
	case "":
		intent = IntentSearch
	default:
		return Request{}, fmt.Errorf("unknown intent %q", in.Intent)
	}

	now := time.Now().UTC()
	request := Request{
		ID:            uuid.NewString(),
		SourceChannel: in.SourceChannel,
		SourceUser:    in.SourceUser,
		MessageText:   in.MessageText,
		AttachmentURL: in.AttachmentURL,
		FileName:      in.FileName,
		Intent:        intent,
		Status:        StatusPending,
		Requirement:   in.Requirement,
		Limit:         in.Limit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, request); err != nil {
		return Request{}, err
	}
	return request, nil
}

// Get returns a request by ID.
func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.Repo.GetByID(ctx, id)
}

// Process claims a pending request and runs the pipeline. Component
// failures of the infrastructure kind are captured on the request as
// failed; the caller still receives the request, not a transport error.
func (s *Service) Process(ctx context.Context, id string) (Request, error) {
	return s.run(ctx, id, StatusPending)
}

// Retry re-enters processing from failed only.
func (s *Service) Retry(ctx context.Context, id string) (Request, error) {
	return s.run(ctx, id, StatusFailed)
}

func (s *Service) run(ctx context.Context, id, from string) (out Request, err error) {
	startedAt := time.Now().UTC()
	request, err := s.Repo.ClaimProcessing(ctx, id, from)
	if err != nil {
		return Request{}, err
	}
	metrics.IncRequestStarted()
	telemetry.Info("request.status", map[string]any{
		"request_id":        request.ID,
		"intent":            request.Intent,
		"status":            StatusProcessing,
		"status_transition": from + "->" + StatusProcessing,
	})

	defer func() {
		if rec := recover(); rec != nil {
			out, err = s.fail(request, ErrorCodeInternal, fmt.Errorf("panic: %v", rec), startedAt)
		}
	}()

	text := request.MessageText
	if request.AttachmentURL != "" && s.Attachments != nil {
		attached, err := s.Attachments.Load(ctx, request.AttachmentURL)
		if err != nil {
			// Unparseable attachments degrade to the message text alone.
			telemetry.Error("request.attachment", map[string]any{
				"request_id": request.ID,
				"url":        request.AttachmentURL,
				"error":      err.Error(),
			})
		} else if attached != "" {
			text = text + "\n" + attached
		}
	}

	normalized := textnorm.Normalize(text, "")
	extracted := s.Extractor.Extract(normalized.Text, normalized.Language)

	result := &Result{Matches: []matching.MatchResult{}}
	switch request.Intent {
	case IntentIngest:
		outcome, err := s.Candidates.Upsert(ctx, extracted, request.AttachmentURL)
		if err != nil {
			return s.fail(request, ErrorCodeStorage, fmt.Errorf("candidate upsert: %w", err), startedAt)
		}
		metrics.IncCandidateUpsert()
		result.CandidateOutcome = &outcome
		result.Summary = fmt.Sprintf("candidate %s: %s", outcome.CandidateID, outcome.Action)
	default:
		pool, err := s.Candidates.Pool(ctx)
		if err != nil {
			return s.fail(request, ErrorCodeStorage, fmt.Errorf("candidate pool: %w", err), startedAt)
		}
		requirement := s.requirementFor(request, extracted)
		matches := s.Matcher.Match(requirement, pool)
		if request.Limit > 0 && len(matches) > request.Limit {
			matches = matches[:request.Limit]
		}
		result.Matches = matches
		result.Summary = fmt.Sprintf("found %d matching candidates for %d extracted skills", len(matches), len(extracted.Skills))
	}

	processedAt := time.Now().UTC()
	result.ProcessingTimeMs = float64(processedAt.Sub(startedAt).Microseconds()) / 1000.0
	if err := s.Repo.Complete(ctx, request.ID, &extracted, result, processedAt); err != nil {
		return s.fail(request, ErrorCodeStorage, fmt.Errorf("record result: %w", err), startedAt)
	}
	metrics.IncRequestCompleted()
	metrics.AddMatchesReturned(len(result.Matches))
	metrics.ObserveRequestDurationMs(result.ProcessingTimeMs)
	telemetry.Info("request.status", map[string]any{
		"request_id":        request.ID,
		"intent":            request.Intent,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       result.ProcessingTimeMs,
		"skills_found":      len(extracted.Skills),
		"matches":           len(result.Matches),
	})
	return s.Repo.GetByID(ctx, request.ID)
}

// requirementFor derives the matching requirement: an explicit requirement
// on the request wins, otherwise the extracted skills drive the search.
func (s *Service) requirementFor(request Request, extracted extract.Result) matching.Requirement {
	if request.Requirement != nil {
		req := *request.Requirement
		req.Ref = request.ID
		if len(req.RequiredSkills) == 0 && len(req.PreferredSkills) == 0 {
			req.RequiredSkills = extracted.SkillNames()
		}
		return req
	}
	return matching.Requirement{
		Ref:            request.ID,
		RequiredSkills: extracted.SkillNames(),
		Seniority:      extracted.Seniority,
		Location:       extracted.Location,
	}
}

func (s *Service) fail(request Request, code string, err error, startedAt time.Time) (Request, error) {
	msg := sanitizeError(err)
	processedAt := time.Now().UTC()
	// Recording the failure must not be lost to a canceled caller context.
	if failErr := s.Repo.Fail(context.Background(), request.ID, code, msg, processedAt); failErr != nil {
		telemetry.Error("request.fail", map[string]any{
			"request_id": request.ID,
			"error":      failErr.Error(),
			"cause":      msg,
		})
		return Request{}, failErr
	}
	metrics.IncRequestFailed()
	metrics.ObserveRequestDurationMs(float64(processedAt.Sub(startedAt).Microseconds()) / 1000.0)
	telemetry.Info("request.status", map[string]any{
		"request_id":        request.ID,
		"intent":            request.Intent,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"error":             msg,
		"duration_ms":       float64(processedAt.Sub(startedAt).Microseconds()) / 1000.0,
	})
	return s.Repo.GetByID(context.Background(), request.ID)
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
