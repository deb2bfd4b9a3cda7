package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MatGen-Intelligence/internal/interfaces/http/middleware"
)

type noopGenerator struct{}

func (noopGenerator) GenerateMaterials(context.Context, material.Constraints, int, float64) ([]material.GeneratedMaterial, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "matgen",
	}, logging.NewNopLogger())
	require.NoError(t, err)

	genHandler, err := handlers.NewGenerationHandler(noopGenerator{}, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		GenerationHandler: genHandler,
		StructureHandler:  handlers.NewStructureHandler(t.TempDir(), nil),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
			"artifacts": func(context.Context) error { return nil },
		}, nil),
		Logger:           logging.NewNopLogger(),
		Metrics:          prometheus.NewAppMetrics(collector),
		MetricsCollector: collector,
		Logging:          middleware.DefaultLoggingConfig(),
		CORS:             middleware.DefaultCORSConfig(),
	})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestRouterProbeEndpoints(t *testing.T) {
	r := newTestRouter(t)
	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz").Code)
}

func TestRouterServesMetrics(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterAssignsRequestID(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/healthz")
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(t)
	w := get(r, "/api/v1/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestRouterGenerateRouteRegistered(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/materials/generate",
		nil)
	r.ServeHTTP(w, req)
	// Empty body fails binding with 400, proving the route is wired.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
