// Package chromem provides an embedded vector driver backed by chromem-go.
// It needs no external service and is the default retrieval backend.
package chromem

import (
	"context"
	"fmt"
	"log/slog"

	chromem "github.com/philippgille/chromem-go"

	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for conversation turns.
	DefaultCollectionName = "chat_history"

	responseMetadataKey = "response"
)

// Driver implements vector.Driver using a chromem-go collection.
type Driver struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
	logger     *slog.Logger
}

// Config holds configuration for the chromem driver.
type Config struct {
	// Path is the directory the database persists to. An empty path keeps
	// everything in memory.
	Path string

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// Dimensions is the embedding size. chromem has no listing API, so
	// ListIDs queries with an anchor vector of this size.
	Dimensions uint

	// Compress gzips persisted documents.
	Compress bool
}

// NewDriver opens (or creates) the chromem database and collection.
func NewDriver(c Config, log *slog.Logger) (*Driver, error) {
	log = logger.OrNop(log)

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("chromem: %w", vector.ErrNoDimensions)
	}

	name := c.CollectionName
	if name == "" {
		name = DefaultCollectionName
	}

	db := chromem.NewDB()
	if c.Path != "" {
		var err error
		db, err = chromem.NewPersistentDB(c.Path, c.Compress)
		if err != nil {
			return nil, fmt.Errorf("%w: opening chromem database at %s: %v", vector.ErrConnection, c.Path, err)
		}
	}

	// Embeddings are always supplied by the caller, so the collection never
	// needs its own embedding function.
	collection, err := db.GetOrCreateCollection(name, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("getting or creating collection %q: %w", name, err)
	}

	log.Info("chromem vector driver initialized",
		"path", c.Path,
		"collection", name,
		"documents", collection.Count(),
	)

	return &Driver{
		db:         db,
		collection: collection,
		dimensions: int(c.Dimensions),
		logger:     log,
	}, nil
}

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: chromem collection expects precomputed embeddings", vector.ErrEmbedding)
}

// Add stores documents with their embeddings. Existing IDs are overwritten.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	for _, doc := range docs {
		err := d.collection.AddDocument(ctx, chromem.Document{
			ID:        doc.ID,
			Content:   doc.Key,
			Embedding: doc.Embedding,
			Metadata:  map[string]string{responseMetadataKey: doc.Payload},
		})
		if err != nil {
			return fmt.Errorf("adding document %s: %w", doc.ID, err)
		}
	}

	if len(docs) > 0 {
		d.logger.Debug("added documents to chromem", "count", len(docs))
	}

	return nil
}

// Query finds the topK most similar documents. topK is clamped to the
// collection size since chromem rejects larger requests.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	n := min(topK, d.collection.Count())
	if n == 0 {
		return []vector.QueryResult{}, nil
	}

	found, err := d.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying chromem: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(found))
	for _, r := range found {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:        r.ID,
				Key:       r.Content,
				Payload:   r.Metadata[responseMetadataKey],
				Embedding: r.Embedding,
			},
			Score: r.Similarity,
		})
	}

	d.logger.Debug("queried chromem", "results", len(results))

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := d.collection.GetByID(ctx, id)
		if err != nil {
			// chromem only fails GetByID for unknown or empty ids
			continue
		}
		docs = append(docs, vector.Document{
			ID:        doc.ID,
			Key:       doc.Content,
			Payload:   doc.Metadata[responseMetadataKey],
			Embedding: doc.Embedding,
		})
	}

	return docs, nil
}

// ListIDs returns every document ID in the collection.
func (d *Driver) ListIDs(ctx context.Context) ([]string, error) {
	n := d.collection.Count()
	if n == 0 {
		return []string{}, nil
	}

	anchor := make([]float32, d.dimensions)
	anchor[0] = 1

	found, err := d.collection.QueryEmbedding(ctx, anchor, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing chromem documents: %w", err)
	}

	ids := make([]string, len(found))
	for i, r := range found {
		ids[i] = r.ID
	}

	return ids, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := d.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chromem", "count", len(ids))

	return nil
}

// Close is a no-op: chromem persists every write as it happens.
func (d *Driver) Close() error {
	return nil
}
