package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartmail-backend/internal/generations"
	"smartmail-backend/internal/history"
	"smartmail-backend/internal/services/health"
	"smartmail-backend/internal/shared/config"
	"smartmail-backend/internal/shared/metrics"
	"smartmail-backend/internal/shared/server/middleware"
	"smartmail-backend/internal/shared/server/respond"
)

const (
	rateGroupGenerate = "GENERATE"
	rateGroupDefault  = "DEFAULT"
)

// RouterDeps holds the handlers and infrastructure the router mounts.
type RouterDeps struct {
	Config            config.Config
	GenerationHandler *generations.Handler
	HistoryHandler    *history.Handler
	Health            *health.Service
	Limiter           middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rl := deps.Config.RateLimit
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupGenerate: {Rate: rl.GenerateRate, Burst: rl.GenerateBurst},
				rateGroupDefault:  {Rate: rl.DefaultRate, Burst: rl.DefaultBurst},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true, "success": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
	})

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/generate" {
		return rateGroupGenerate
	}
	return rateGroupDefault
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
