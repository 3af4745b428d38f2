// Package intake exposes the synchronous convenience endpoints: combined
// extract-and-search, candidate ingestion, and the candidate record view.
// Both write paths run through the request lifecycle manager so every call
// leaves an auditable Request behind.
package intake

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/candidates"
	"skillmatch-backend/internal/matching"
	"skillmatch-backend/internal/requests"
	"skillmatch-backend/internal/shared/server/respond"
)

// Handler wires the intake endpoints.
type Handler struct {
	Requests   *requests.Service
	Candidates *candidates.Service
}

// NewHandler constructs a Handler.
func NewHandler(reqSvc *requests.Service, candSvc *candidates.Service) *Handler {
	return &Handler{Requests: reqSvc, Candidates: candSvc}
}

// RegisterRoutes attaches intake routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/search", h.search)
	rg.POST("/candidates/ingest", h.ingest)
	rg.GET("/candidates/:id", h.getCandidate)
}

type searchPayload struct {
	Text            string   `json:"text" binding:"required"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	Location        string   `json:"location"`
	Limit           int      `json:"limit"`
}

func (h *Handler) search(c *gin.Context) {
	var payload searchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid search payload", gin.H{
			"reason": err.Error(),
		})
		return
	}

	var requirement *matching.Requirement
	if len(payload.RequiredSkills) > 0 || len(payload.PreferredSkills) > 0 || payload.Location != "" {
		requirement = &matching.Requirement{
			RequiredSkills:  payload.RequiredSkills,
			PreferredSkills: payload.PreferredSkills,
			Location:        payload.Location,
		}
	}

	request, err := h.runPipeline(c, requests.CreateInput{
		SourceChannel: "api",
		MessageText:   payload.Text,
		Intent:        requests.IntentSearch,
		Requirement:   requirement,
		Limit:         payload.Limit,
	})
	if err != nil {
		return
	}

	matches := []gin.H{}
	var processingMs float64
	if request.Result != nil {
		for _, m := range request.Result.Matches {
			matches = append(matches, requests.MatchBody(m))
		}
		processingMs = request.Result.ProcessingTimeMs
	}

	extracted := gin.H{
		"total_skills_found": 0,
		"confidence":         0.0,
	}
	if request.Extracted != nil {
		for category, names := range request.Extracted.ByCategory() {
			extracted[category] = names
		}
		extracted["total_skills_found"] = len(request.Extracted.Skills)
		extracted["confidence"] = request.Extracted.Confidence
	}

	respond.OK(c, gin.H{
		"request_id":         request.ID,
		"extracted_skills":   extracted,
		"matching_employees": matches,
		"total_matches":      len(matches),
		"processing_time":    processingMs,
	})
}

type ingestPayload struct {
	Text             string `json:"text" binding:"required"`
	FileName         string `json:"file_name"`
	FileURL          string `json:"file_url"`
	ExtractionSource string `json:"extraction_source"`
}

func (h *Handler) ingest(c *gin.Context) {
	var payload ingestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid ingest payload", gin.H{
			"reason": err.Error(),
		})
		return
	}

	source := payload.ExtractionSource
	if source == "" {
		source = "api"
	}

	request, err := h.runPipeline(c, requests.CreateInput{
		SourceChannel: source,
		MessageText:   payload.Text,
		AttachmentURL: payload.FileURL,
		FileName:      payload.FileName,
		Intent:        requests.IntentIngest,
	})
	if err != nil {
		return
	}

	body := gin.H{
		"employee_id":      "",
		"action":           candidates.ActionSkipped,
		"changes_detected": false,
		"changes_summary":  []string{},
		"status":           request.Status,
	}
	if request.Result != nil && request.Result.CandidateOutcome != nil {
		outcome := request.Result.CandidateOutcome
		body["employee_id"] = outcome.CandidateID
		body["action"] = outcome.Action
		body["changes_detected"] = outcome.ChangesDetected
		body["changes_summary"] = outcome.ChangeSummary
	}

	respond.OK(c, gin.H{
		"request_id":       request.ID,
		"candidate_result": body,
	})
}

func (h *Handler) getCandidate(c *gin.Context) {
	candidate, err := h.Candidates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, candidates.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "candidate not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch candidate", nil)
		}
		return
	}
	respond.OK(c, candidate)
}

// runPipeline creates and synchronously processes a request. It writes the
// HTTP error response itself and returns a non-nil error to signal the
// caller to stop.
func (h *Handler) runPipeline(c *gin.Context, in requests.CreateInput) (requests.Request, error) {
	request, err := h.Requests.Create(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return requests.Request{}, err
	}

	request, err = h.Requests.Process(c.Request.Context(), request.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process request", nil)
		return requests.Request{}, err
	}
	if request.Status == requests.StatusFailed {
		respond.Error(c, http.StatusInternalServerError, request.ErrorCode, request.ErrorMessage, gin.H{
			"request_id": request.ID,
		})
		return requests.Request{}, errors.New(request.ErrorMessage)
	}
	return request, nil
}
