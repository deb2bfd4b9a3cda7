package constraint_gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Backend is a chat-completion inference endpoint.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// chatRequest / chatResponse follow the OpenAI-compatible wire format, which
// both hosted APIs and local servers (vLLM, llama.cpp) speak.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// HTTPBackend calls an OpenAI-compatible chat endpoint with bounded retries.
type HTTPBackend struct {
	cfg    *ConstraintGPTConfig
	client *http.Client
	logger logging.Logger
}

// NewHTTPBackend validates the config and builds the backend.
func NewHTTPBackend(cfg *ConstraintGPTConfig, logger logging.Logger) (*HTTPBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HTTPBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond},
		logger: logger,
	}, nil
}

// Complete sends the prompt and returns the first choice's content.  Retries
// use exponential backoff up to the configured cap; context cancellation
// stops the retry loop.
func (b *HTTPBackend) Complete(ctx context.Context, prompt string) (string, error) {
	backoff := time.Duration(b.cfg.RetryConfig.InitialBackoffMs) * time.Millisecond
	maxBackoff := time.Duration(b.cfg.RetryConfig.MaxBackoffMs) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= b.cfg.RetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", errors.Wrap(ctx.Err(), errors.ErrCodeAIInferenceFailed, "completion canceled")
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * b.cfg.RetryConfig.BackoffMultiplier)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		content, err := b.completeOnce(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err
		b.logger.Warn("completion attempt failed",
			logging.Int("attempt", attempt+1),
			logging.Err(err))
	}
	return "", lastErr
}

func (b *HTTPBackend) completeOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: b.cfg.ModelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: b.cfg.Temperature,
		TopP:        b.cfg.TopP,
		MaxTokens:   b.cfg.MaxOutputTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "encode completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIModelNotAvailable, "completion endpoint unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIInferenceFailed, "read completion response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrCodeAIInferenceFailed,
			"completion endpoint returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIResponseUnparsable, "decode completion response")
	}
	if cr.Error != nil {
		return "", errors.Newf(errors.ErrCodeAIInferenceFailed, "completion error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New(errors.ErrCodeAIResponseUnparsable, "completion returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
