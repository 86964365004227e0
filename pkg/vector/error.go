package vector

import "errors"

var (
	// ErrNoDimensions is returned when a driver is opened without a vector size.
	ErrNoDimensions = errors.New("embedding dimensions cannot be 0, must be configured")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store cannot be reached or opened.
	ErrConnection = errors.New("vector store connection failed")
)
