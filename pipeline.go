// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ragdex indexes documents into per-source vector collections and
// answers questions about them with a retrieval-augmented chat agent.
package ragdex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/ragdex/agent"
	"github.com/poiesic/ragdex/ai"
	"github.com/poiesic/ragdex/ai/openai"
	"github.com/poiesic/ragdex/config"
	"github.com/poiesic/ragdex/core"
	"github.com/poiesic/ragdex/document"
	"github.com/poiesic/ragdex/identity"
	"github.com/poiesic/ragdex/index"
	"github.com/poiesic/ragdex/retrieval"
	"github.com/poiesic/ragdex/storage"
	badgerstore "github.com/poiesic/ragdex/storage/badger"
	"github.com/poiesic/ragdex/vector"
)

// Pipeline wires the full system together: identity store, vector store
// lifecycle, document loading, batch indexing, retrieval and the chat
// agent. It is the single entry point for the CLI and the HTTP server.
type Pipeline struct {
	config     *config.Config
	identities *identity.Store
	lifecycle  *vector.Client
	opener     *vector.QdrantOpener
	provider   ai.AIProvider
	indexer    *index.Indexer
	retriever  *retrieval.Retriever
	backend    *badgerstore.Backend
	history    storage.HistoryRepository
	agent      *agent.Agent
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	provider        ai.AIProvider
	progress        io.Writer
	inMemoryHistory bool
}

// WithProvider substitutes the AI provider, e.g. a test double.
func WithProvider(provider ai.AIProvider) PipelineOption {
	return func(o *pipelineOptions) {
		o.provider = provider
	}
}

// WithProgress sets where indexing progress output is written.
func WithProgress(w io.Writer) PipelineOption {
	return func(o *pipelineOptions) {
		o.progress = w
	}
}

// WithMemoryHistory keeps conversation history in memory instead of on
// disk. Used by tests and one-shot invocations.
func WithMemoryHistory() PipelineOption {
	return func(o *pipelineOptions) {
		o.inMemoryHistory = true
	}
}

// NewPipeline assembles a pipeline from configuration.
// Missing vector store credentials or an invalid chunking setup fail here,
// before any work is attempted.
func NewPipeline(cfg *config.Config, opts ...PipelineOption) (*Pipeline, error) {
	options := &pipelineOptions{
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
			ai.WithChatHost(cfg.AI.ChatHost),
			ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
			ai.WithChatModel(cfg.AI.ChatModel),
			ai.WithAPIKey(cfg.AI.APIKey),
		)

		var err error
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.MappingsPath), 0755); err != nil {
		provider.Close()
		return nil, err
	}
	identities := identity.NewStore(cfg.Storage.MappingsPath)

	lifecycle, err := vector.NewClient(cfg.Qdrant.URL, cfg.Qdrant.APIKey)
	if err != nil {
		provider.Close()
		return nil, err
	}

	opener, err := vector.NewQdrantOpener(cfg.Qdrant.URL, cfg.Qdrant.APIKey, provider.Embedder())
	if err != nil {
		provider.Close()
		return nil, err
	}

	splitter, err := document.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		provider.Close()
		return nil, err
	}
	loader := document.NewLoader()

	indexConfig := &index.Config{
		BatchSize:  cfg.Indexing.BatchSize,
		MaxRetries: cfg.Indexing.MaxRetries,
		RetryDelay: time.Duration(cfg.Indexing.RetryDelaySec) * time.Second,
		BatchPause: time.Duration(cfg.Indexing.BatchPauseMS) * time.Millisecond,
		VectorSize: cfg.Qdrant.VectorSize,
		Distance:   parseDistance(cfg.Qdrant.Distance),
	}
	indexer := index.NewIndexer(identities, lifecycle, opener, provider.Embedder(),
		loader, splitter, indexConfig, index.WithProgress(options.progress))

	retriever := retrieval.NewRetriever(opener, cfg.Retrieval.TopK)

	backend, err := badgerstore.OpenBackend(cfg.Storage.HistoryPath, options.inMemoryHistory)
	if err != nil {
		provider.Close()
		return nil, err
	}
	history, err := badgerstore.NewHistoryRepository(backend)
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	chatAgent := agent.New(provider.ChatModel(), retriever, agent.WithHistory(history))

	return &Pipeline{
		config:     cfg,
		identities: identities,
		lifecycle:  lifecycle,
		opener:     opener,
		provider:   provider,
		indexer:    indexer,
		retriever:  retriever,
		backend:    backend,
		history:    history,
		agent:      chatAgent,
		logger:     slog.Default(),
	}, nil
}

// Close releases all resources.
func (p *Pipeline) Close() error {
	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}
	if err := p.history.Close(); err != nil {
		p.logger.Error("error closing history repository", "err", err)
		return err
	}
	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing history backend", "err", err)
		return err
	}
	return nil
}

// NewSession starts a conversation session with no active collection.
func (p *Pipeline) NewSession() *retrieval.Session {
	return retrieval.NewSession()
}

// IndexSource runs a full indexing pass for a file, directory, or URL and
// returns the assigned chunk ids.
func (p *Pipeline) IndexSource(ctx context.Context, source string, forceRecreate bool) ([]string, error) {
	return p.indexer.Index(ctx, source, forceRecreate)
}

// EnsureSource makes a source queryable, indexing it first if it has never
// been indexed, and returns its collection name.
func (p *Pipeline) EnsureSource(ctx context.Context, source string) (string, error) {
	if mapping, ok := p.identities.Get(source); ok && mapping.LastIndexed != nil {
		p.logger.Info("using existing collection",
			"source", source, "collection", mapping.CollectionName,
			"documents", mapping.DocumentCount, "lastIndexed", mapping.LastIndexed)
		return mapping.CollectionName, nil
	}

	p.logger.Info("source not indexed yet, indexing now", "source", source)
	if _, err := p.indexer.Index(ctx, source, false); err != nil {
		return "", err
	}

	mapping, ok := p.identities.Get(source)
	if !ok {
		return "", fmt.Errorf("no mapping recorded for %s after indexing", source)
	}
	return mapping.CollectionName, nil
}

// Ask answers a query within a session through the chat agent.
func (p *Pipeline) Ask(ctx context.Context, session *retrieval.Session, query string, stream agent.StreamFunc) (string, error) {
	return p.agent.Ask(ctx, session, query, stream)
}

// ListSources returns a snapshot of all indexed sources.
func (p *Pipeline) ListSources() map[string]*core.SourceMapping {
	return p.identities.ListAll()
}

// DeleteSource removes a source's identity mapping and drops its vector
// collection. Returns whether the source was known.
func (p *Pipeline) DeleteSource(ctx context.Context, source string) (bool, error) {
	mapping, ok := p.identities.Get(source)
	if !ok {
		return false, nil
	}

	if err := p.lifecycle.DeleteCollection(ctx, mapping.CollectionName); err != nil {
		return false, err
	}
	return p.identities.Delete(source), nil
}

// History exposes the conversation history repository.
func (p *Pipeline) History() storage.HistoryRepository {
	return p.history
}

// parseDistance maps a config string to a distance metric, defaulting to
// cosine for anything unrecognized.
func parseDistance(s string) vector.Distance {
	switch strings.ToLower(s) {
	case "euclid", "euclidean":
		return vector.DistanceEuclid
	case "dot":
		return vector.DistanceDot
	default:
		return vector.DistanceCosine
	}
}
