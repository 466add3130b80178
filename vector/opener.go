package vector

import (
	"context"
	"net/url"

	"github.com/poiesic/ragdex/ai"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
)

// QdrantOpener acquires langchaingo-backed stores for named collections.
// A fresh store value is constructed per Open call; construction does not
// touch the network, so callers may open freely.
type QdrantOpener struct {
	url      *url.URL
	apiKey   string
	embedder ai.Embedder
}

// NewQdrantOpener creates an opener for the Qdrant server at rawURL.
// Documents added through opened stores are embedded with embedder.
func NewQdrantOpener(rawURL, apiKey string, embedder ai.Embedder) (*QdrantOpener, error) {
	if rawURL == "" {
		return nil, ErrURLRequired
	}
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	return &QdrantOpener{
		url:      u,
		apiKey:   apiKey,
		embedder: embedder,
	}, nil
}

// Open returns a Store bound to the named collection.
func (o *QdrantOpener) Open(collection string) (Store, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	inner, err := qdrant.New(
		qdrant.WithURL(*o.url),
		qdrant.WithAPIKey(o.apiKey),
		qdrant.WithCollectionName(collection),
		qdrant.WithEmbedder(&embedderAdapter{embedder: o.embedder}),
	)
	if err != nil {
		return nil, err
	}

	return &qdrantStore{inner: inner}, nil
}

// qdrantStore adapts the langchaingo Qdrant store to the Store interface.
type qdrantStore struct {
	inner qdrant.Store
}

func (s *qdrantStore) AddDocuments(ctx context.Context, docs []schema.Document) ([]string, error) {
	return s.inner.AddDocuments(ctx, docs)
}

func (s *qdrantStore) SimilaritySearch(ctx context.Context, query string, k int) ([]schema.Document, error) {
	return s.inner.SimilaritySearch(ctx, query, k)
}

// embedderAdapter bridges ai.Embedder to the langchaingo embedder contract.
type embedderAdapter struct {
	embedder ai.Embedder
}

func (a *embedderAdapter) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return a.embedder.EmbedTexts(ctx, texts)
}

func (a *embedderAdapter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return a.embedder.EmbedText(ctx, text)
}
