// Package anthropic implements generation.Generator with Anthropic's messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/mentor/pkg/generation"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-haiku-4-5-20251001"

// Config holds configuration for the Anthropic generator.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
}

// Generator sends prompts to Anthropic.
type Generator struct {
	client anthropic.Client
	model  string
}

// NewGenerator creates an Anthropic generator. An API key is required.
func NewGenerator(c Config) (*Generator, error) {
	if c.APIKey == "" {
		return nil, errors.New("anthropic API key is required (run `mentor auth anthropic` or set ANTHROPIC_API_KEY)")
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
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Generate sends prompt as one user message and joins the text blocks of
// the reply.
func (g *Generator) Generate(ctx context.Context, prompt string, p generation.Params) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(p.MaxTokens),
		Temperature: anthropic.Float(p.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	return b.String(), nil
}

// Close is a no-op.
func (g *Generator) Close() error {
	return nil
}

var _ generation.Generator = (*Generator)(nil)
