package testutils

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/papercomputeco/mentor/pkg/embeddings/hash"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
// Texts without an explicit entry fall back to a small hash embedding, so
// identical texts always match and different texts rarely collide.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// Err, when set, fails every call.
	Err error

	calls    atomic.Int64
	fallback *hash.Embedder
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		fallback:   hash.NewEmbedder(MockDimensions),
	}
}

// MockDimensions is the size of fallback embeddings.
const MockDimensions = 32

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)

	if m.Err != nil {
		return nil, m.Err
	}

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	return m.fallback.Embed(ctx, text)
}

// Calls returns how many times Embed was invoked.
func (m *MockEmbedder) Calls() int {
	return int(m.calls.Load())
}

func (m *MockEmbedder) Close() error {
	return nil
}
