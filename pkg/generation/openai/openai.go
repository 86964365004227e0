// Package openai implements generation.Generator with OpenAI chat completions.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/papercomputeco/mentor/pkg/generation"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Config holds configuration for the OpenAI generator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// MaxRetries overrides the SDK's retry count when non-negative.
	MaxRetries int
}

// Generator sends prompts to an OpenAI compatible API.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates an OpenAI generator. An API key is required.
func NewGenerator(c Config) (*Generator, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai API key is required (run `mentor auth openai` or set OPENAI_API_KEY)")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(max(c.MaxRetries, 0)),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}

	return &Generator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate sends prompt as one user message and returns the first choice.
func (g *Generator) Generate(ctx context.Context, prompt string, p generation.Params) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(p.Temperature),
		MaxTokens:   openai.Int(int64(p.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// Close is a no-op.
func (g *Generator) Close() error {
	return nil
}

var _ generation.Generator = (*Generator)(nil)
