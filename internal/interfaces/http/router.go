// Package http assembles the gin route tree and the HTTP server around the
// generation pipeline.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// RouterConfig aggregates the handlers and middleware settings of the route
// tree.  Nil handlers leave their routes unregistered, which keeps tests and
// partial deployments simple.
type RouterConfig struct {
	GenerationHandler *handlers.GenerationHandler
	StructureHandler  *handlers.StructureHandler
	HealthHandler     *handlers.HealthHandler

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector

	Logging   middleware.LoggingConfig
	CORS      middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig
}

// NewRouter wires global middleware, probe endpoints, and the /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORS))

	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.GenerationHandler != nil {
		api.POST("/materials/generate", cfg.GenerationHandler.Generate)
	}
	if cfg.StructureHandler != nil {
		api.GET("/structures", cfg.StructureHandler.List)
		api.GET("/structures/:filename", cfg.StructureHandler.Download)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    errors.ErrCodeNotFound.String(),
			"message": "route not found",
		})
	})

	return r
}
