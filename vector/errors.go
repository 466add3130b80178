package vector

import "errors"

var (
	// ErrURLRequired is returned when the Qdrant URL is not configured.
	ErrURLRequired = errors.New("qdrant URL required")

	// ErrAPIKeyRequired is returned when the Qdrant API key is not configured.
	ErrAPIKeyRequired = errors.New("qdrant API key required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCollectionRequired is returned when a collection name is empty.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrDimensionMismatch indicates the configured vector size does not
	// match the dimensionality the embedding model actually produces.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
