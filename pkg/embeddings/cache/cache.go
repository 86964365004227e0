// Package cache memoizes embeddings so repeated texts, such as the subject
// lookup query, skip the provider round trip.
package cache

import (
	"context"
	"slices"

	"github.com/dgraph-io/ristretto"

	"github.com/papercomputeco/mentor/pkg/embeddings"
)

const (
	defaultNumCounters = 1e5
	defaultMaxCost     = 32 << 20 // bytes of float32 data
	defaultBufferItems = 64
)

// Config sizes the cache. Zero values use the defaults.
type Config struct {
	NumCounters int64
	MaxCost     int64
}

// Embedder wraps another embeddings.Embedder with an in-memory cache.
type Embedder struct {
	next  embeddings.Embedder
	cache *ristretto.Cache
}

// Ensure Embedder implements the interface
var _ embeddings.Embedder = (*Embedder)(nil)

// New wraps next.
func New(next embeddings.Embedder, cfg Config) (*Embedder, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = defaultNumCounters
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = defaultMaxCost
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &Embedder{next: next, cache: c}, nil
}

// Embed returns a cached vector for text or asks the wrapped embedder.
// Callers get their own copy of the vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			return slices.Clone(vec), nil
		}
	}

	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, slices.Clone(vec), int64(len(vec)*4))
	return vec, nil
}

// Wait blocks until buffered writes are visible to Get.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

// Close drops the cache and closes the wrapped embedder.
func (e *Embedder) Close() error {
	e.cache.Close()
	return e.next.Close()
}
