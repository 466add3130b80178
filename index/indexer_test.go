package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/ragdex/ai/mock"
	"github.com/poiesic/ragdex/identity"
	"github.com/poiesic/ragdex/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

type fakeLoader struct {
	docs []schema.Document
	err  error
}

func (f *fakeLoader) Load(ctx context.Context, source string) ([]schema.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type fakeSplitter struct {
	chunks []schema.Document
	err    error
}

func (f *fakeSplitter) Split(docs []schema.Document) ([]schema.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type ensureCall struct {
	name       string
	vectorSize int
	distance   vector.Distance
	force      bool
}

type fakeLifecycle struct {
	calls []ensureCall
	err   error
}

func (f *fakeLifecycle) EnsureCollection(ctx context.Context, name string, vectorSize int, distance vector.Distance, forceRecreate bool) error {
	f.calls = append(f.calls, ensureCall{name, vectorSize, distance, forceRecreate})
	return f.err
}

// fakeStore records every AddDocuments call. Errors in errs are consumed
// one per call; failAlways makes every call fail.
type fakeStore struct {
	mu         sync.Mutex
	calls      [][]schema.Document
	errs       []error
	failAlways error
	nextID     int
}

func (s *fakeStore) AddDocuments(ctx context.Context, docs []schema.Document) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, docs)
	if s.failAlways != nil {
		return nil, s.failAlways
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("id-%d", s.nextID)
		s.nextID++
	}
	return ids, nil
}

func (s *fakeStore) SimilaritySearch(ctx context.Context, query string, k int) ([]schema.Document, error) {
	return nil, nil
}

type fakeOpener struct {
	store  *fakeStore
	opened []string
}

func (f *fakeOpener) Open(collection string) (vector.Store, error) {
	f.opened = append(f.opened, collection)
	return f.store, nil
}

func makeChunks(n int) []schema.Document {
	chunks := make([]schema.Document, n)
	for i := range chunks {
		chunks[i] = schema.Document{PageContent: fmt.Sprintf("chunk-%d", i)}
	}
	return chunks
}

// fastConfig keeps retries and pauses short enough for tests.
func fastConfig() *Config {
	return &Config{
		BatchSize:  10,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		BatchPause: time.Millisecond,
		Distance:   vector.DistanceCosine,
	}
}

type indexerFixture struct {
	indexer    *Indexer
	identities *identity.Store
	lifecycle  *fakeLifecycle
	opener     *fakeOpener
	store      *fakeStore
}

func newFixture(t *testing.T, chunks []schema.Document, config *Config) *indexerFixture {
	t.Helper()

	identities := identity.NewStore(filepath.Join(t.TempDir(), "mappings.json"))
	lifecycle := &fakeLifecycle{}
	store := &fakeStore{}
	opener := &fakeOpener{store: store}
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8

	ix := NewIndexer(identities, lifecycle, opener, embedder,
		&fakeLoader{docs: []schema.Document{{PageContent: "raw"}}},
		&fakeSplitter{chunks: chunks},
		config)

	return &indexerFixture{
		indexer:    ix,
		identities: identities,
		lifecycle:  lifecycle,
		opener:     opener,
		store:      store,
	}
}

func TestIndexer_BatchPartitioning(t *testing.T) {
	// 23 chunks at batch size 10 must produce batches of 10, 10 and 3.
	chunks := makeChunks(23)
	fx := newFixture(t, chunks, fastConfig())

	ids, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.NoError(t, err)
	assert.Len(t, ids, 23)

	require.Len(t, fx.store.calls, 3)
	assert.Len(t, fx.store.calls[0], 10)
	assert.Len(t, fx.store.calls[1], 10)
	assert.Len(t, fx.store.calls[2], 3)

	// Concatenating the batches must reproduce the original chunk order.
	var submitted []schema.Document
	for _, batch := range fx.store.calls {
		submitted = append(submitted, batch...)
	}
	require.Len(t, submitted, 23)
	for i, chunk := range submitted {
		assert.Equal(t, chunks[i].PageContent, chunk.PageContent)
	}

	mapping, ok := fx.identities.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Equal(t, 23, mapping.DocumentCount)
	require.NotNil(t, mapping.LastIndexed)
	assert.True(t, mapping.LastIndexed.After(mapping.CreatedAt),
		"last indexed must be strictly after creation")
}

func TestIndexer_SingleBatch(t *testing.T) {
	fx := newFixture(t, makeChunks(5), fastConfig())

	ids, err := fx.indexer.Index(context.Background(), "docs/small.txt", false)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
	assert.Len(t, fx.store.calls, 1)
}

func TestIndexer_RetryExhaustion(t *testing.T) {
	fx := newFixture(t, makeChunks(5), fastConfig())
	fx.store.failAlways = errors.New("write timeout")

	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.Error(t, err)
	assert.ErrorContains(t, err, "write timeout")
	assert.Len(t, fx.store.calls, 3, "should attempt exactly MaxRetries times")

	// A failed run must leave the mapping untouched.
	mapping, ok := fx.identities.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Equal(t, 0, mapping.DocumentCount)
	assert.Nil(t, mapping.LastIndexed)
}

func TestIndexer_RetrySucceedsAfterTransientFailure(t *testing.T) {
	config := fastConfig()
	config.RetryDelay = 40 * time.Millisecond

	fx := newFixture(t, makeChunks(5), config)
	fx.store.errs = []error{errors.New("transient")}

	started := time.Now()
	ids, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	elapsed := time.Since(started)

	require.NoError(t, err)
	assert.Len(t, ids, 5)
	assert.Len(t, fx.store.calls, 2, "failed batch should be attempted exactly twice")
	assert.GreaterOrEqual(t, elapsed, config.RetryDelay, "retry must wait the backoff delay")

	mapping, ok := fx.identities.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Equal(t, 5, mapping.DocumentCount)
}

func TestIndexer_DimensionMismatch(t *testing.T) {
	config := fastConfig()
	config.VectorSize = 32 // mock embedder produces 8

	fx := newFixture(t, makeChunks(5), config)

	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)
	assert.Empty(t, fx.lifecycle.calls, "collection must not be touched on a config error")
}

func TestIndexer_EnsureCollectionUsesProbedSize(t *testing.T) {
	fx := newFixture(t, makeChunks(3), fastConfig())

	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", true)
	require.NoError(t, err)

	require.Len(t, fx.lifecycle.calls, 1)
	call := fx.lifecycle.calls[0]
	assert.Equal(t, 8, call.vectorSize)
	assert.Equal(t, vector.DistanceCosine, call.distance)
	assert.True(t, call.force)
	assert.Equal(t, []string{call.name}, fx.opener.opened)
}

func TestIndexer_DocumentCountAccumulatesAcrossRuns(t *testing.T) {
	fx := newFixture(t, makeChunks(5), fastConfig())

	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.NoError(t, err)
	_, err = fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.NoError(t, err)

	// Adds are append-only, so repeated runs stack their counts.
	mapping, ok := fx.identities.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Equal(t, 10, mapping.DocumentCount)
}

func TestIndexer_CollectionStableAcrossRuns(t *testing.T) {
	fx := newFixture(t, makeChunks(2), fastConfig())

	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.NoError(t, err)
	_, err = fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.NoError(t, err)

	require.Len(t, fx.opener.opened, 2)
	assert.Equal(t, fx.opener.opened[0], fx.opener.opened[1])
}

func TestIndexer_LoaderFailurePropagates(t *testing.T) {
	fx := newFixture(t, nil, fastConfig())
	loadErr := errors.New("unreadable source")
	fx.indexer.loader = &fakeLoader{err: loadErr}

	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)
	assert.Empty(t, fx.lifecycle.calls)
	assert.Empty(t, fx.store.calls)
}

func TestIndexer_InvalidBatchSize(t *testing.T) {
	config := fastConfig()
	config.BatchSize = 0

	fx := newFixture(t, makeChunks(3), config)
	_, err := fx.indexer.Index(context.Background(), "docs/sample.txt", false)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestPartition(t *testing.T) {
	cases := []struct {
		name  string
		total int
		size  int
		want  []int
	}{
		{"empty", 0, 10, nil},
		{"exact multiple", 20, 10, []int{10, 10}},
		{"remainder", 23, 10, []int{10, 10, 3}},
		{"single undersized", 3, 10, []int{3}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batches := partition(makeChunks(tc.total), tc.size)
			require.Len(t, batches, len(tc.want))
			for i, want := range tc.want {
				assert.Len(t, batches[i], want)
			}
		})
	}
}
