package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latency, and in-flight gauge per route.
// The matched route template is used as the path label so parameterized
// routes do not explode label cardinality.
func Metrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		active := metrics.HTTPActiveRequests.WithLabelValues(method, path)
		active.Inc()
		start := time.Now()

		c.Next()

		active.Dec()
		prometheus.RecordHTTPRequest(metrics, method, path, c.Writer.Status(), time.Since(start))
	}
}
