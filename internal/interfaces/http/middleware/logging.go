package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
)

// LoggingConfig tunes the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged at all, e.g. health probes.
	SkipPaths []string

	// SlowThreshold promotes a request to Warn level when exceeded.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips health probes and flags requests over 3s.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestLogging logs one entry per completed request.  5xx responses log at
// Error, 4xx and slow requests at Warn, everything else at Info.
func RequestLogging(logger logging.Logger, cfg LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("remote_addr", c.ClientIP()),
			logging.String("request_id", GetRequestID(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		case cfg.SlowThreshold > 0 && duration >= cfg.SlowThreshold:
			logger.Warn("http request (slow)", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}
