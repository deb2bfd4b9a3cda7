package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/internal/application/export"
	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/prometheus"
	constraintgpt "github.com/turtacn/MatGen-Intelligence/internal/intelligence/constraint_gpt"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// MaterialGenerator runs the generation pipeline.
type MaterialGenerator interface {
	GenerateMaterials(ctx context.Context, constraints material.Constraints, nSamples int, temperature float64) ([]material.GeneratedMaterial, error)
}

// ConstraintExtractor turns a natural-language query into property bounds.
type ConstraintExtractor interface {
	ProcessQuery(ctx context.Context, query string) (material.Constraints, error)
}

// StructureExporter writes structure files for generated materials.
type StructureExporter interface {
	Export(materials []material.GeneratedMaterial, formats []string) (map[string]map[string]string, error)
	OutputDir() string
}

const (
	defaultNSamples    = 10
	defaultTemperature = 1.0
	generationCacheTTL = 15 * time.Minute
)

// GenerateRequest is the body of POST /api/v1/materials/generate.  Either
// Query or Constraints drives the target properties; when both are present
// the explicit constraints win.
type GenerateRequest struct {
	Query             string                    `json:"query"`
	Constraints       map[string]material.Range `json:"constraints"`
	NSamples          int                       `json:"n_samples"`
	Temperature       float64                   `json:"temperature"`
	Formats           []string                  `json:"formats"`
	IncludeStructures bool                      `json:"include_structures"`
}

// GenerateResponse is the success body.
type GenerateResponse struct {
	RequestID   string                       `json:"request_id,omitempty"`
	Count       int                          `json:"count"`
	Constraints material.Constraints         `json:"constraints"`
	Materials   []export.MaterialVisData     `json:"materials"`
	Files       map[string]map[string]string `json:"files,omitempty"`
	Cached      bool                         `json:"cached"`
}

// GenerationHandler serves the generation endpoint.
type GenerationHandler struct {
	generator MaterialGenerator
	extractor ConstraintExtractor
	exporter  StructureExporter
	cache     redis.Cache
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewGenerationHandler wires the pipeline behind the endpoint.  extractor,
// exporter, cache, and metrics are optional; the handler degrades to
// constraints-only requests without an extractor and skips caching and file
// output when cache or exporter are absent.
func NewGenerationHandler(generator MaterialGenerator, extractor ConstraintExtractor, exporter StructureExporter, cache redis.Cache, metrics *prometheus.AppMetrics, log logging.Logger) (*GenerationHandler, error) {
	if generator == nil {
		return nil, errors.New(errors.ErrCodeInternal, "generation handler requires a generator")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GenerationHandler{
		generator: generator,
		extractor: extractor,
		exporter:  exporter,
		cache:     cache,
		metrics:   metrics,
		logger:    log,
	}, nil
}

// Generate handles POST /api/v1/materials/generate.
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}
	if req.NSamples == 0 {
		req.NSamples = defaultNSamples
	}
	if req.Temperature == 0 {
		req.Temperature = defaultTemperature
	}

	constraints, err := h.resolveConstraints(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	materials, cached, err := h.generate(c.Request.Context(), constraints, req.NSamples, req.Temperature)
	if h.metrics != nil {
		prometheus.RecordGeneration(h.metrics, req.NSamples, len(materials), time.Since(start), err)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	resp := GenerateResponse{
		RequestID:   c.Writer.Header().Get("X-Request-ID"),
		Count:       len(materials),
		Constraints: constraints,
		Materials:   export.VisualizationData(materials, req.IncludeStructures),
		Cached:      cached,
	}

	if h.exporter != nil && len(req.Formats) > 0 && len(materials) > 0 {
		files, exportErr := h.exporter.Export(materials, req.Formats)
		if exportErr != nil {
			h.logger.Warn("structure export failed", logging.Err(exportErr))
		} else {
			resp.Files = files
		}
	}

	c.JSON(http.StatusOK, resp)
}

// resolveConstraints produces a complete constraint set from the request,
// using the NLP extractor for free-text queries and default bounds to fill
// whatever a partial constraint map leaves open.
func (h *GenerationHandler) resolveConstraints(ctx context.Context, req *GenerateRequest) (material.Constraints, error) {
	if len(req.Constraints) > 0 {
		return constraintgpt.PrepareConstraints(material.Constraints(req.Constraints)), nil
	}
	if req.Query == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "either query or constraints is required")
	}
	if h.extractor == nil {
		return nil, errors.New(errors.ErrCodeAIModelNotAvailable, "natural-language queries are not enabled")
	}

	start := time.Now()
	constraints, err := h.extractor.ProcessQuery(ctx, req.Query)
	if h.metrics != nil {
		prometheus.RecordConstraintExtraction(h.metrics, "query", time.Since(start), err)
	}
	return constraints, err
}

// generate runs the pipeline, collapsing identical concurrent requests onto
// one execution through the cache when one is configured.
func (h *GenerationHandler) generate(ctx context.Context, constraints material.Constraints, nSamples int, temperature float64) ([]material.GeneratedMaterial, bool, error) {
	if h.cache == nil {
		out, err := h.generator.GenerateMaterials(ctx, constraints, nSamples, temperature)
		return out, false, err
	}

	key, err := generationCacheKey(constraints, nSamples, temperature)
	if err != nil {
		out, genErr := h.generator.GenerateMaterials(ctx, constraints, nSamples, temperature)
		return out, false, genErr
	}

	cached := true
	var out []material.GeneratedMaterial
	err = h.cache.GetOrSet(ctx, key, &out, generationCacheTTL, func(ctx context.Context) (interface{}, error) {
		cached = false
		return h.generator.GenerateMaterials(ctx, constraints, nSamples, temperature)
	})
	if err != nil {
		return nil, false, err
	}
	if h.metrics != nil {
		prometheus.RecordCacheAccess(h.metrics, "generation", cached)
	}
	return out, cached, nil
}

// generationCacheKey hashes the full request parameters.  Map marshaling in
// encoding/json sorts keys, so equal constraint sets hash identically.
func generationCacheKey(constraints material.Constraints, nSamples int, temperature float64) (string, error) {
	blob, err := json.Marshal(constraints)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(fmt.Appendf(blob, "|%d|%g", nSamples, temperature))
	return "gen:" + hex.EncodeToString(sum[:]), nil
}
