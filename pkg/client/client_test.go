package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) {
	l.log(format, args...)
}
func (l *testLogger) Infof(format string, args ...interface{}) {
	l.log(format, args...)
}
func (l *testLogger) Errorf(format string, args ...interface{}) {
	l.log(format, args...)
}
func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.lastMsg = fmt.Sprintf(format, args...)
}

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	assert.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "matgen-go-sdk/")
}

func TestNewClient_EmptyBaseURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("ftp://invalid")
	assert.Error(t, err)
	_, err = NewClient("invalid-url")
	assert.Error(t, err)
}

func TestNewClient_BaseURLTrailingSlash(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	assert.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
}

func TestNewClient_WithOptions(t *testing.T) {
	customClient := &http.Client{Timeout: 10 * time.Second}
	logger := &testLogger{}
	c, err := NewClient("http://api.example.com",
		WithHTTPClient(customClient),
		WithLogger(logger),
		WithRetryMax(5),
		WithAPIKey("secret"),
	)
	assert.NoError(t, err)
	assert.Equal(t, customClient, c.httpClient)
	assert.Equal(t, 5, c.retryMax)
	assert.Equal(t, "secret", c.apiKey)
}

// ---------------------------------------------------------------------------
// Request Behavior Tests
// ---------------------------------------------------------------------------

func TestDo_SetsHeaders(t *testing.T) {
	var gotAuth, gotUA, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}, WithAPIKey("test-api-key"))

	err := c.get(context.Background(), "/ping", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Contains(t, gotUA, "matgen-go-sdk/")
	assert.NotEmpty(t, gotReqID)
}

func TestDo_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.get(context.Background(), "/ping", nil))
	assert.Empty(t, gotAuth)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"code":"COMMON_001","message":"boom"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}, WithRetryWait(time.Millisecond, 2*time.Millisecond))

	var out map[string]bool
	err := c.get(context.Background(), "/flaky", &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_NoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"COMMON_002","message":"bad input"}`))
	})

	err := c.get(context.Background(), "/bad", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "COMMON_002", apiErr.Code)
	assert.Equal(t, "bad input", apiErr.Message)
	assert.False(t, apiErr.IsServerError())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_RetryMaxExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":"COMMON_006","message":"down"}`))
	}, WithRetryMax(2), WithRetryWait(time.Millisecond, 2*time.Millisecond))

	err := c.get(context.Background(), "/down", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls)) // initial + 2 retries
}

func TestAPIError_Predicates(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())
	assert.True(t, (&APIError{StatusCode: 502}).IsServerError())
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 500, Code: "COMMON_001", Message: "oops", RequestID: "rid-1"}
	msg := err.Error()
	assert.Contains(t, msg, "COMMON_001")
	assert.Contains(t, msg, "500")
	assert.Contains(t, msg, "rid-1")
}

func TestSubClients_Singleton(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	assert.Same(t, c.Materials(), c.Materials())
	assert.Same(t, c.Structures(), c.Structures())
}
