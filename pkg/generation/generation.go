// Package generation defines the text generation backend used for code
// analysis and dialogue turns, and classifies its failures.
package generation

import (
	"context"
	"time"
)

const (
	// DefaultMaxTokens bounds every response.
	DefaultMaxTokens = 300

	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second
)

// Params are the sampling parameters sent with every prompt.
type Params struct {
	// Temperature 0 keeps responses deterministic.
	Temperature float64
	MaxTokens   int

	// Timeout is applied by Run around each Generate call. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// DefaultParams returns temperature 0 and DefaultMaxTokens.
func DefaultParams() Params {
	return Params{
		Temperature: 0,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
}

// Generator turns a prompt into response text.
type Generator interface {
	// Generate returns the model's response to prompt.
	Generate(ctx context.Context, prompt string, p Params) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}
