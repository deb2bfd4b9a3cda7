package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service emits, grouped by layer.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Generation pipeline
	GenerationRequestsTotal  CounterVec
	GenerationDuration       HistogramVec
	GenerationSamplesDrawn   HistogramVec
	GenerationMaterialsCount HistogramVec
	GenerationSkippedSamples CounterVec

	// Structure recovery
	RecoveryDuration      HistogramVec
	RecoveryFallbackTotal CounterVec
	DiversityMemorySize   GaugeVec

	// Constraint extraction
	ConstraintRequestsTotal CounterVec
	ConstraintDuration      HistogramVec
	ConstraintFallbackTotal CounterVec

	// Artifacts and storage
	ArtifactLoadStatus GaugeVec
	ExportFilesTotal   CounterVec

	// Infrastructure
	CacheHitsTotal    CounterVec
	CacheMissesTotal  CounterVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultPipelineBuckets     = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 15, 30, 60}
	DefaultLLMDurationBuckets  = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultCountBuckets        = []float64{1, 2, 5, 10, 25, 50, 100}
)

// NewAppMetrics registers every metric against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Generation pipeline
	m.GenerationRequestsTotal = collector.RegisterCounter("generation_requests_total", "Generation pipeline runs", "status")
	m.GenerationDuration = collector.RegisterHistogram("generation_duration_seconds", "End-to-end generation duration", DefaultPipelineBuckets, "status")
	m.GenerationSamplesDrawn = collector.RegisterHistogram("generation_samples_requested", "Samples requested per run", DefaultCountBuckets)
	m.GenerationMaterialsCount = collector.RegisterHistogram("generation_materials_returned", "Materials returned per run", DefaultCountBuckets)
	m.GenerationSkippedSamples = collector.RegisterCounter("generation_skipped_samples_total", "Samples skipped during a run", "reason")

	// Recovery
	m.RecoveryDuration = collector.RegisterHistogram("recovery_duration_seconds", "Structure recovery duration", DefaultHTTPDurationBuckets, "mode")
	m.RecoveryFallbackTotal = collector.RegisterCounter("recovery_fallback_total", "Recoveries that fell back to the nearest neighbor")
	m.DiversityMemorySize = collector.RegisterGauge("recovery_diversity_memory_size", "Formulas held in diversity memory")

	// Constraint extraction
	m.ConstraintRequestsTotal = collector.RegisterCounter("constraint_requests_total", "Constraint extraction calls", "source", "status")
	m.ConstraintDuration = collector.RegisterHistogram("constraint_duration_seconds", "Constraint extraction duration", DefaultLLMDurationBuckets, "source")
	m.ConstraintFallbackTotal = collector.RegisterCounter("constraint_fallback_total", "Extractions that used rule-based parsing", "reason")

	// Artifacts and storage
	m.ArtifactLoadStatus = collector.RegisterGauge("artifact_load_status", "Artifact bundle load status (1=loaded, 0=failed)", "bundle")
	m.ExportFilesTotal = collector.RegisterCounter("export_files_total", "Exported structure files", "format", "status")

	// Infrastructure
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordGeneration(metrics *AppMetrics, requested, returned int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.GenerationRequestsTotal.WithLabelValues(status).Inc()
	metrics.GenerationDuration.WithLabelValues(status).Observe(duration.Seconds())
	metrics.GenerationSamplesDrawn.WithLabelValues().Observe(float64(requested))
	if err == nil {
		metrics.GenerationMaterialsCount.WithLabelValues().Observe(float64(returned))
	}
}

func RecordConstraintExtraction(metrics *AppMetrics, source string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ConstraintRequestsTotal.WithLabelValues(source, status).Inc()
	metrics.ConstraintDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordExport(metrics *AppMetrics, format string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ExportFilesTotal.WithLabelValues(format, status).Inc()
}

func RecordError(metrics *AppMetrics, component, errorType string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
