package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
)

// ReadinessCheck reports whether one dependency is ready to serve.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks  map[string]ReadinessCheck
	timeout time.Duration
	logger  logging.Logger
}

// NewHealthHandler registers named readiness checks, typically the artifact
// provider and the cache connection.
func NewHealthHandler(checks map[string]ReadinessCheck, log logging.Logger) *HealthHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HealthHandler{
		checks:  checks,
		timeout: 5 * time.Second,
		logger:  log,
	}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz.  Every registered check must pass; any
// failure yields 503 with the per-component breakdown.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			ready = false
			components[name] = err.Error()
			h.logger.Warn("readiness check failed",
				logging.String("component", name), logging.Err(err))
		} else {
			components[name] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "components": components})
}
