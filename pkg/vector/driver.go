// Package vector provides interfaces and implementations for vector storage and
// similarity search over conversation turns.
package vector

import "context"

// Document represents a stored turn with its embedding.
type Document struct {
	// ID is a unique identifier for the document (the decimal turn id).
	ID string

	// Key is the text the embedding was computed from: the user input, or
	// the canonical subject sentinel.
	Key string

	// Payload is the response text associated with Key.
	Payload string

	// Embedding is the vector representation of Key.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding,
	// ordered by descending score. Querying an empty store returns an empty
	// result and no error.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs. Unknown IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// ListIDs returns the IDs of every stored document.
	ListIDs(ctx context.Context) ([]string, error)

	// Close releases any resources held by the driver.
	Close() error
}
