package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		statusTransition := ""
		if raw, ok := c.Get("statusTransition"); ok {
			if s, ok := raw.(string); ok {
				statusTransition = s
			}
		}
		processingID := ""
		if raw, ok := c.Get("processingRequestId"); ok {
			if s, ok := raw.(string); ok {
				processingID = s
			}
		}

		telemetry.Info("request.complete", map[string]any{
			"request_id":            reqID,
			"method":                c.Request.Method,
			"path":                  c.Request.URL.Path,
			"status":                status,
			"status_transition":     statusTransition,
			"processing_request_id": processingID,
			"duration_ms":           float64(latency.Microseconds()) / 1000.0,
			"client":                ClientFromContext(c),
			"client_ip":             c.ClientIP(),
			"user_agent":            c.Request.UserAgent(),
		})
	}
}
