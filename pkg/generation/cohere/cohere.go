// Package cohere implements generation.Generator with Cohere's chat API.
package cohere

import (
	"context"
	"errors"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"

	"github.com/papercomputeco/mentor/pkg/generation"
)

// DefaultModel is Cohere's general purpose command model.
const DefaultModel = "command"

// Config holds configuration for the Cohere generator.
type Config struct {
	APIKey string

	// Model defaults to DefaultModel.
	Model string

	// BaseURL overrides the Cohere API URL.
	BaseURL string
}

// Generator sends prompts to Cohere.
type Generator struct {
	client *cohereclient.Client
	model  string
}

// NewGenerator creates a Cohere generator. An API key is required.
func NewGenerator(c Config) (*Generator, error) {
	if c.APIKey == "" {
		return nil, errors.New("cohere API key is required (run `mentor auth cohere` or set COHERE_API_KEY)")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithToken(c.APIKey)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}

	return &Generator{
		client: cohereclient.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate sends prompt as a single chat message.
func (g *Generator) Generate(ctx context.Context, prompt string, p generation.Params) (string, error) {
	resp, err := g.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       cohere.String(g.model),
		Temperature: cohere.Float64(p.Temperature),
		MaxTokens:   cohere.Int(p.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}

	return resp.Text, nil
}

// Close is a no-op.
func (g *Generator) Close() error {
	return nil
}

var _ generation.Generator = (*Generator)(nil)
