// Package client is the Go SDK for the MatGen-Intelligence generation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const Version = "0.1.0"

// Logger defines the logging interface used by the Client.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is the MatGen-Intelligence SDK client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	materials      *MaterialsClient
	materialsOnce  sync.Once
	structures     *StructuresClient
	structuresOnce sync.Once
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("matgen: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient creates a new MatGen-Intelligence SDK client.  The API key is
// optional; deployments without authentication accept an empty key.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("client: baseURL is required")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid baseURL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("client: baseURL scheme must be http or https")
	}

	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		userAgent:    fmt.Sprintf("matgen-go-sdk/%s", Version),
		logger:       &noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Materials returns the materials sub-client (lazy initialization, thread-safe).
func (c *Client) Materials() *MaterialsClient {
	c.materialsOnce.Do(func() {
		c.materials = &MaterialsClient{client: c}
	})
	return c.materials
}

// Structures returns the structures sub-client (lazy initialization, thread-safe).
func (c *Client) Structures() *StructuresClient {
	c.structuresOnce.Do(func() {
		c.structures = &StructuresClient{client: c}
	})
	return c.structures
}

// do performs an HTTP request with retry logic.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}

			// Reset body reader for retry
			if body != nil {
				bodyBytes, _ := json.Marshal(body)
				bodyReader = bytes.NewReader(bodyBytes)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.New().String()
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			if c.shouldRetry(nil, err) {
				continue
			}
			return err
		}

		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			if retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil && attempt < c.retryMax {
					c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
					select {
					case <-time.After(time.Duration(seconds) * time.Second):
						continue
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				RequestID:  requestID,
			}

			if len(respBody) > 0 {
				var errResp struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal(respBody, &errResp); err == nil {
					apiErr.Code = errResp.Code
					apiErr.Message = errResp.Message
				} else {
					apiErr.Message = string(respBody)
				}
			}

			lastErr = apiErr
			if c.shouldRetry(resp, nil) {
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}

		return nil
	}

	return lastErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// getRaw fetches a path without JSON decoding, for file downloads.
func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Message
		} else {
			apiErr.Message = string(body)
		}
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode >= 500 && resp.StatusCode < 600 {
		return true
	}
	// 4xx is not retried; 429 is handled separately via Retry-After.
	return false
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff with jitter
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}

	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
	return backoff + jitter
}
