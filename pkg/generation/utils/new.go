// Package generationutils builds a generation.Generator from configuration.
package generationutils

import (
	"fmt"

	"github.com/papercomputeco/mentor/pkg/credentials"
	"github.com/papercomputeco/mentor/pkg/generation"
	"github.com/papercomputeco/mentor/pkg/generation/anthropic"
	"github.com/papercomputeco/mentor/pkg/generation/cohere"
	"github.com/papercomputeco/mentor/pkg/generation/ollama"
	"github.com/papercomputeco/mentor/pkg/generation/openai"
)

const (
	ProviderCohere    = "cohere"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewGeneratorOpts selects and configures a generator.
type NewGeneratorOpts struct {
	ProviderType string

	// Target overrides the provider's base URL.
	Target string
	Model  string

	// APIKey takes precedence over CredMgr. When both are empty the
	// provider's environment variable is used.
	APIKey  string
	CredMgr *credentials.Manager
}

// NewGenerator creates the configured generator.
func NewGenerator(o *NewGeneratorOpts) (generation.Generator, error) {
	switch o.ProviderType {
	case ProviderCohere, "":
		return cohere.NewGenerator(cohere.Config{
			APIKey:  o.resolveKey(ProviderCohere),
			Model:   o.Model,
			BaseURL: o.Target,
		})
	case ProviderOpenAI:
		return openai.NewGenerator(openai.Config{
			APIKey:     o.resolveKey(ProviderOpenAI),
			Model:      o.Model,
			BaseURL:    o.Target,
			MaxRetries: 2,
		})
	case ProviderAnthropic:
		return anthropic.NewGenerator(anthropic.Config{
			APIKey:     o.resolveKey(ProviderAnthropic),
			Model:      o.Model,
			BaseURL:    o.Target,
			MaxRetries: 2,
		})
	case ProviderOllama:
		return ollama.NewGenerator(ollama.Config{
			BaseURL: o.Target,
			Model:   o.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", o.ProviderType)
	}
}

func (o *NewGeneratorOpts) resolveKey(provider string) string {
	if o.APIKey != "" {
		return o.APIKey
	}
	return o.CredMgr.ResolveKey(provider)
}
