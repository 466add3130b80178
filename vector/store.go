package vector

import (
	"context"

	"github.com/tmc/langchaingo/schema"
)

// Distance is a similarity metric for a collection.
type Distance string

const (
	// DistanceCosine is cosine similarity, the default for text embeddings.
	DistanceCosine Distance = "Cosine"
	// DistanceEuclid is euclidean distance.
	DistanceEuclid Distance = "Euclid"
	// DistanceDot is dot-product similarity.
	DistanceDot Distance = "Dot"
)

// Store is the write and search surface of a single vector collection.
// Adding a document embeds its text and stores the embedding together with
// the original text and metadata; every add is an append-only insert with
// a fresh id, not an upsert.
type Store interface {
	// AddDocuments embeds and stores the documents, returning the assigned ids
	// in input order.
	AddDocuments(ctx context.Context, docs []schema.Document) ([]string, error)

	// SimilaritySearch returns up to k documents ranked by similarity to the query.
	SimilaritySearch(ctx context.Context, query string, k int) ([]schema.Document, error)
}

// Opener acquires a Store for a named collection.
// Implementations must be safe for concurrent use.
type Opener interface {
	Open(collection string) (Store, error)
}
