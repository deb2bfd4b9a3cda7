package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// RateLimitConfig tunes the per-client token bucket.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate allowed per client IP.
	RequestsPerMinute int

	// Burst is the bucket capacity; short bursts up to this size pass even
	// when the sustained rate is exceeded.
	Burst int
}

// DefaultRateLimitConfig allows 120 requests per minute with a burst of 20.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 120, Burst: 20}
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// rateLimiter is a mutex-guarded token bucket per client key.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   float64
	now     func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(cfg.RequestsPerMinute) / 60.0,
		burst:   float64(cfg.Burst),
		now:     time.Now,
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastFill: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastFill).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastFill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit rejects clients that exceed the configured rate with 429.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := newRateLimiter(cfg)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(60/max(cfg.RequestsPerMinute, 1)+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    errors.ErrCodeTooManyRequests.String(),
				"message": errors.DefaultMessageForCode(errors.ErrCodeTooManyRequests),
			})
			return
		}
		c.Next()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
