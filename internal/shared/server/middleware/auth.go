package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/shared/server/respond"
)

const clientIDKey = "clientId"

// Auth enforces the shared API token when one is configured. Identity and
// authorization proper live with the upstream gateway; this is only the
// service boundary check. With no token configured all requests pass,
// which is the local development default.
func Auth(apiToken string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(apiToken))
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		if len(expected) == 0 {
			c.Set(clientIDKey, clientLabel(c))
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(clientIDKey, clientLabel(c))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	}
	return strings.TrimSpace(c.GetHeader("X-Api-Key"))
}

func clientLabel(c *gin.Context) string {
	if name := strings.TrimSpace(c.GetHeader("X-Client-Name")); name != "" {
		return name
	}
	return c.ClientIP()
}

// ClientFromContext fetches the caller label set by the auth middleware.
func ClientFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(clientIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
