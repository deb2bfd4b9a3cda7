// Package constraint_gpt turns natural-language material queries into
// structured property constraints.  A chat-completion backend does the heavy
// lifting; a rule-based extractor covers the cases where the model's answer
// cannot be parsed, and defaults fill any property the query left out.
package constraint_gpt

import (
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// BackendType defines the type of inference backend.
type BackendType string

const (
	BackendHTTP   BackendType = "http"
	BackendOpenAI BackendType = "openai"
)

// RetryConfig holds retry settings for backend calls.
type RetryConfig struct {
	MaxRetries        int     `json:"max_retries"`
	InitialBackoffMs  int     `json:"initial_backoff_ms"`
	MaxBackoffMs      int     `json:"max_backoff_ms"`
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

// ConstraintGPTConfig holds configuration for the constraint extractor.
type ConstraintGPTConfig struct {
	ModelID         string      `json:"model_id"`
	BackendType     BackendType `json:"backend_type"`
	Endpoint        string      `json:"endpoint"`
	APIKey          string      `json:"api_key"`
	MaxOutputTokens int         `json:"max_output_tokens"`
	Temperature     float64     `json:"temperature"`
	TopP            float64     `json:"top_p"`
	TimeoutMs       int         `json:"timeout_ms"`
	RetryConfig     RetryConfig `json:"retry_config"`
}

// NewConstraintGPTConfig creates a new configuration with defaults.  The low
// temperature keeps extraction output stable across identical queries.
func NewConstraintGPTConfig() *ConstraintGPTConfig {
	return &ConstraintGPTConfig{
		BackendType:     BackendOpenAI,
		MaxOutputTokens: 512,
		Temperature:     0.1,
		TopP:            0.9,
		TimeoutMs:       30000,
		RetryConfig: RetryConfig{
			MaxRetries:        3,
			InitialBackoffMs:  1000,
			MaxBackoffMs:      15000,
			BackoffMultiplier: 2.0,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *ConstraintGPTConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2.0 {
		return errors.New(errors.ErrCodeAIInputInvalid, "temperature must be between 0 and 2.0")
	}
	if c.TopP <= 0 || c.TopP > 1.0 {
		return errors.New(errors.ErrCodeAIInputInvalid, "top_p must be between 0 and 1.0")
	}
	if c.MaxOutputTokens <= 0 {
		return errors.New(errors.ErrCodeAIInputInvalid, "max_output_tokens must be positive")
	}
	if c.Endpoint == "" {
		return errors.New(errors.ErrCodeAIInputInvalid, "endpoint is required")
	}
	return nil
}
