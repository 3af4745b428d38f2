package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(token))
	router.GET("/api/v1/requests/abc", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client": ClientFromContext(c)})
	})
	router.OPTIONS("/api/v1/requests/abc", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutToken(t *testing.T) {
	router := newAuthRouter("secret")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/requests/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthOpenWhenNoTokenConfigured(t *testing.T) {
	router := newAuthRouter("")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router := newAuthRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsWrongToken(t *testing.T) {
	router := newAuthRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	router := newAuthRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthAcceptsAPIKeyHeader(t *testing.T) {
	router := newAuthRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	req.Header.Set("X-Api-Key", "secret")
	req.Header.Set("X-Client-Name", "slack-bridge")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"client":"slack-bridge"}` {
		t.Fatalf("unexpected body %s", body)
	}
}
