// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/papercomputeco/mentor/pkg/embeddings"
	"github.com/papercomputeco/mentor/pkg/embeddings/hash"
	"github.com/papercomputeco/mentor/pkg/embeddings/ollama"
	"github.com/papercomputeco/mentor/pkg/embeddings/openai"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   uint

	// APIKey is only used by hosted providers.
	APIKey string
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case ProviderOllama:
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderOpenAI:
		// The configured default target is the local Ollama server.
		base := o.TargetURL
		if base == ollama.DefaultBaseURL {
			base = ""
		}
		return openai.NewEmbedder(openai.Config{
			APIKey:     o.APIKey,
			BaseURL:    base,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderHash:
		return hash.NewEmbedder(o.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
