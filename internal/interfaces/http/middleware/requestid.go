// Package middleware holds the gin middleware chain shared by all HTTP
// routes: request identity, structured request logging, CORS, rate limiting,
// and metrics collection.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the canonical request-ID header.
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID is the gin context key carrying the request ID.
const ContextKeyRequestID = "request_id"

// RequestID propagates an incoming X-Request-ID or assigns a fresh UUID, and
// echoes it on the response so clients can correlate logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request ID assigned by RequestID, or "" when the
// middleware did not run.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
