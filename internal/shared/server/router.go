package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/intake"
	"skillmatch-backend/internal/requests"
	"skillmatch-backend/internal/services/health"
	"skillmatch-backend/internal/shared/config"
	"skillmatch-backend/internal/shared/metrics"
	"skillmatch-backend/internal/shared/server/middleware"
	"skillmatch-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up. Bootstrap owns
// construction; the router only attaches middleware and routes.
type RouterDeps struct {
	Config          config.Config
	RequestsHandler *requests.Handler
	IntakeHandler   *intake.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.APIToken),
		middleware.RateLimit(rateLimitConfig()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		payload := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if ok, _ := payload["ok"].(bool); !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	api.GET("/metrics", metrics.Handler())
	deps.RequestsHandler.RegisterRoutes(api)
	deps.IntakeHandler.RegisterRoutes(api)

	return r
}

// rateLimitConfig throttles the processing endpoints harder than reads;
// polling a request by ID stays cheap for chat clients.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "PROCESS",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet {
				return "POLLING"
			}
			return "PROCESS"
		},
		Rules: map[string]middleware.RateLimitRule{
			"POLLING": {Rate: 10, Burst: 20},
			"PROCESS": {Rate: 2, Burst: 5},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
