// Package openai embeds text with the OpenAI embeddings API or any server
// that speaks it.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/papercomputeco/mentor/pkg/embeddings"
	"github.com/papercomputeco/mentor/pkg/vector"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "text-embedding-3-small"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Dimensions asks the model to shorten its vectors and is checked
	// against every response. Zero keeps the model's native size.
	Dimensions uint
}

// Embedder calls the embeddings endpoint once per text.
type Embedder struct {
	client     openai.Client
	model      string
	dimensions int
}

func NewEmbedder(c Config) (*Embedder, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai API key is required for embeddings (run `mentor auth openai` or set OPENAI_API_KEY)")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(c.APIKey)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}

	return &Embedder{
		client:     openai.NewClient(opts...),
		model:      model,
		dimensions: int(c.Dimensions),
	}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings: %w", vector.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}

	raw := resp.Data[0].Embedding
	if e.dimensions > 0 && len(raw) != e.dimensions {
		return nil, fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
			vector.ErrEmbedding, e.model, len(raw), e.dimensions)
	}

	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
