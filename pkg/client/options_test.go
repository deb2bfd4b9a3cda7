package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithHTTPClient(t *testing.T) {
	customClient := &http.Client{Timeout: 60 * time.Second}
	c := &Client{}

	WithHTTPClient(customClient)(c)
	assert.Same(t, customClient, c.httpClient)
}

func TestWithLogger(t *testing.T) {
	logger := &testLogger{}
	c := &Client{}

	WithLogger(logger)(c)
	assert.Equal(t, Logger(logger), c.logger)
}

func TestWithAPIKey(t *testing.T) {
	c := &Client{}
	WithAPIKey("token")(c)
	assert.Equal(t, "token", c.apiKey)
}

func TestWithRetryMax(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"positive value", 5, 5},
		{"zero value", 0, 0},
		{"negative value ignored", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{retryMax: 0}
			WithRetryMax(tt.input)(c)
			assert.Equal(t, tt.expected, c.retryMax)
		})
	}
}

func TestWithRetryWait(t *testing.T) {
	tests := []struct {
		name      string
		min       time.Duration
		max       time.Duration
		expectMin time.Duration
		expectMax time.Duration
	}{
		{"valid range", time.Second, 5 * time.Second, time.Second, 5 * time.Second},
		{"equal values", 2 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second},
		{"zero min ignored", 0, 5 * time.Second, 0, 0},
		{"max below min ignored", 5 * time.Second, 2 * time.Second, 5 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{}
			WithRetryWait(tt.min, tt.max)(c)
			assert.Equal(t, tt.expectMin, c.retryWaitMin)
			assert.Equal(t, tt.expectMax, c.retryWaitMax)
		})
	}
}

func TestWithUserAgent(t *testing.T) {
	c := &Client{userAgent: "default"}

	WithUserAgent("custom-agent/1.0")(c)
	assert.Equal(t, "custom-agent/1.0", c.userAgent)

	WithUserAgent("")(c)
	assert.Equal(t, "custom-agent/1.0", c.userAgent)
}
