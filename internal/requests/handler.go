package requests

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/matching"
	"skillmatch-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the request lifecycle service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches request routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/requests", h.createRequest)
	rg.GET("/requests/:id", h.getRequest)
	rg.POST("/requests/:id/process", h.processRequest)
	rg.POST("/requests/:id/retry", h.retryRequest)
}

type createRequestPayload struct {
	SourceChannel string `json:"source_channel"`
	SourceUser    string `json:"source_user"`
	MessageText   string `json:"message_text" binding:"required"`
	AttachmentURL string `json:"attachment_url"`
	Intent        string `json:"intent"`
}

func (h *Handler) createRequest(c *gin.Context) {
	var payload createRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request payload", gin.H{
			"reason": err.Error(),
		})
		return
	}

	request, err := h.Svc.Create(c.Request.Context(), CreateInput{
		SourceChannel: payload.SourceChannel,
		SourceUser:    payload.SourceUser,
		MessageText:   payload.MessageText,
		AttachmentURL: payload.AttachmentURL,
		Intent:        payload.Intent,
	})
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	respond.OK(c, gin.H{
		"request_id": request.ID,
		"status":     request.Status,
	})
}

func (h *Handler) getRequest(c *gin.Context) {
	request, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "request not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch request", nil)
		}
		return
	}
	respond.OK(c, request)
}

func (h *Handler) processRequest(c *gin.Context) {
	h.runAndRespond(c, h.Svc.Process)
}

func (h *Handler) retryRequest(c *gin.Context) {
	h.runAndRespond(c, h.Svc.Retry)
}

func (h *Handler) runAndRespond(c *gin.Context, run func(ctx context.Context, id string) (Request, error)) {
	request, err := run(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "request not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "conflict", "request is not in a processable state", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process request", nil)
		}
		return
	}
	respond.OK(c, processResponse(request))
}

// processResponse composes the wire shape for a processed request: matches
// with employee fields, summary, timing, and error detail when the pipeline
// failed.
func processResponse(request Request) gin.H {
	matches := []gin.H{}
	summary := ""
	var processingMs float64
	if request.Result != nil {
		for _, m := range request.Result.Matches {
			matches = append(matches, MatchBody(m))
		}
		summary = request.Result.Summary
		processingMs = request.Result.ProcessingTimeMs
	}

	body := gin.H{
		"request_id":         request.ID,
		"status":             request.Status,
		"matches":            matches,
		"summary":            summary,
		"processing_time_ms": processingMs,
	}
	if request.Result != nil && request.Result.CandidateOutcome != nil {
		outcome := request.Result.CandidateOutcome
		body["candidate_result"] = gin.H{
			"employee_id":      outcome.CandidateID,
			"action":           outcome.Action,
			"changes_detected": outcome.ChangesDetected,
			"changes_summary":  outcome.ChangeSummary,
			"status":           request.Status,
		}
	}
	if request.Status == StatusFailed {
		body["error"] = gin.H{
			"code":    request.ErrorCode,
			"message": request.ErrorMessage,
		}
	}
	return body
}

// MatchBody renders one match in the wire shape shared by the process
// and combined search responses.
func MatchBody(m matching.MatchResult) gin.H {
	return gin.H{
		"employee_id":     m.CandidateID,
		"employee_name":   m.CandidateName,
		"match_score":     m.Score,
		"matching_skills": m.MatchingSkills,
		"ai_summary":      m.Summary,
	}
}
