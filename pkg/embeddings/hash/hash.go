// Package hash implements a deterministic, offline Embedder using feature
// hashing over word tokens. Texts that share words land near each other,
// and identical texts embed identically, which is enough for exact
// sentinel lookups and rough recall without a model server.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/papercomputeco/mentor/pkg/embeddings"
)

// DefaultDimensions is used when no size is configured.
const DefaultDimensions = 768

// Embedder hashes tokens into a fixed number of buckets.
type Embedder struct {
	dimensions int
}

// NewEmbedder creates a hash embedder producing vectors of the given size.
func NewEmbedder(dimensions uint) *Embedder {
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: int(dimensions)}
}

// Embed returns a unit vector for text. Empty text yields a zero vector
// with a single bucket set so it is never degenerate.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(tokens) == 0 {
		vec[0] = 1
		return vec, nil
	}

	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % uint64(e.dimensions))
		if sum&(1<<63) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	return normalize(vec), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *Embedder) Close() error {
	return nil
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}

	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

var _ embeddings.Embedder = (*Embedder)(nil)
