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


package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/ragdex/ai"
	"github.com/poiesic/ragdex/identity"
	"github.com/poiesic/ragdex/vector"
	"github.com/tmc/langchaingo/schema"
)

// dimensionProbe is the sentinel text embedded once per run to learn the
// model's actual output dimensionality before the collection is created.
const dimensionProbe = "test"

// DocumentLoader reads the full ordered document sequence for a source.
type DocumentLoader interface {
	Load(ctx context.Context, source string) ([]schema.Document, error)
}

// ChunkSplitter breaks loaded documents into embedding-sized chunks.
type ChunkSplitter interface {
	Split(docs []schema.Document) ([]schema.Document, error)
}

// CollectionLifecycle ensures a collection physically exists before writes.
// *vector.Client satisfies this.
type CollectionLifecycle interface {
	EnsureCollection(ctx context.Context, name string, vectorSize int, distance vector.Distance, forceRecreate bool) error
}

// Config holds configuration for indexing runs.
type Config struct {
	// BatchSize is the number of chunks submitted to the vector store per batch
	BatchSize int

	// MaxRetries is the maximum number of attempts for a failed batch write
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff between attempts
	RetryDelay time.Duration

	// BatchPause is the fixed pause between consecutive batches
	BatchPause time.Duration

	// VectorSize, when non-zero, is the declared collection dimensionality.
	// It must match what the embedder actually produces for a probe input.
	VectorSize int

	// Distance is the similarity metric for newly created collections
	Distance vector.Distance
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:  10,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		BatchPause: 500 * time.Millisecond,
		Distance:   vector.DistanceCosine,
	}
}

// Indexer orchestrates a full indexing run for one source: load, split,
// ensure collection, write batches, record the result.
type Indexer struct {
	identities *identity.Store
	lifecycle  CollectionLifecycle
	opener     vector.Opener
	embedder   ai.Embedder
	loader     DocumentLoader
	splitter   ChunkSplitter
	config     *Config
	progress   io.Writer
	logger     *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithProgress sets where human-readable progress output is written
// (typically os.Stderr). Default is to discard it.
func WithProgress(w io.Writer) IndexerOption {
	return func(ix *Indexer) {
		ix.progress = w
	}
}

// NewIndexer creates an indexer. A nil config uses DefaultConfig.
func NewIndexer(
	identities *identity.Store,
	lifecycle CollectionLifecycle,
	opener vector.Opener,
	embedder ai.Embedder,
	loader DocumentLoader,
	splitter ChunkSplitter,
	config *Config,
	opts ...IndexerOption,
) *Indexer {
	if config == nil {
		config = DefaultConfig()
	}

	ix := &Indexer{
		identities: identities,
		lifecycle:  lifecycle,
		opener:     opener,
		embedder:   embedder,
		loader:     loader,
		splitter:   splitter,
		config:     config,
		progress:   io.Discard,
		logger:     slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index runs a full indexing pass for source and returns the ids assigned
// to every chunk, in order. The source's identity mapping is updated only
// when every batch succeeds; any failure leaves it untouched.
//
// If forceRecreate is set, an existing collection is dropped and recreated
// before writing, so the run replaces prior contents instead of appending.
func (ix *Indexer) Index(ctx context.Context, source string, forceRecreate bool) ([]string, error) {
	if ix.config.BatchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	collection, existing, err := ix.identities.GetOrCreate(source)
	if err != nil {
		return nil, err
	}
	ix.logger.Info("starting indexing run", "source", source, "collection", collection, "existing", existing)

	docs, err := ix.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	chunks, err := ix.splitter.Split(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split source: %w", err)
	}

	vectorSize, err := ix.probeVectorSize(ctx)
	if err != nil {
		return nil, err
	}

	if err := ix.lifecycle.EnsureCollection(ctx, collection, vectorSize, ix.config.Distance, forceRecreate); err != nil {
		return nil, err
	}

	store, err := ix.opener.Open(collection)
	if err != nil {
		return nil, err
	}

	batches := partition(chunks, ix.config.BatchSize)
	fmt.Fprintf(ix.progress, "Indexing %d chunks into %s (%d batches of up to %d)\n",
		len(chunks), collection, len(batches), ix.config.BatchSize)

	tracker := NewProgressTracker(ix.progress, len(chunks), ix.config.BatchSize)
	tracker.Start()

	ids := make([]string, 0, len(chunks))
	processed := 0
	for i, batch := range batches {
		var batchIDs []string
		err := RetryWithBackoff(ctx, func() error {
			var addErr error
			batchIDs, addErr = store.AddDocuments(ctx, batch)
			return addErr
		}, ix.config.MaxRetries, ix.config.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to index batch %d/%d after %d attempts: %w",
				i+1, len(batches), ix.config.MaxRetries, err)
		}

		ids = append(ids, batchIDs...)
		processed += len(batch)
		tracker.Update(processed)

		// Pause between batches to bound load on the backing service.
		// No pause after the final batch.
		if i < len(batches)-1 {
			timer := time.NewTimer(ix.config.BatchPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
	tracker.Finish()

	// Counts accumulate across runs because adds are append-only inserts.
	total := len(chunks)
	if mapping, ok := ix.identities.Get(source); ok {
		total += mapping.DocumentCount
	}
	ix.identities.RecordIndexingResult(source, total)

	ix.logger.Info("indexing run complete",
		"source", source, "collection", collection,
		"chunks", len(chunks), "batches", len(batches),
		"elapsed", tracker.Elapsed().Round(time.Millisecond))
	return ids, nil
}

// probeVectorSize embeds the sentinel and reconciles the result with any
// declared dimensionality. A mismatch is a configuration error, not
// something to paper over.
func (ix *Indexer) probeVectorSize(ctx context.Context) (int, error) {
	probe, err := ix.embedder.EmbedText(ctx, dimensionProbe)
	if err != nil {
		return 0, fmt.Errorf("failed to probe embedding dimensionality: %w", err)
	}
	actual := len(probe)

	if ix.config.VectorSize != 0 && ix.config.VectorSize != actual {
		return 0, fmt.Errorf("%w: configured %d, embedder produced %d",
			vector.ErrDimensionMismatch, ix.config.VectorSize, actual)
	}
	return actual, nil
}

// partition splits chunks into consecutive batches of at most size elements,
// preserving order. Batches share the backing array of chunks.
func partition(chunks []schema.Document, size int) [][]schema.Document {
	var batches [][]schema.Document
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[start:end])
	}
	return batches
}
