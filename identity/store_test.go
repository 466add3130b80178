package identity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/ragdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mappings.json")
	return NewStore(path), path
}

func TestStore_GetOrCreate_New(t *testing.T) {
	store, _ := newTestStore(t)

	name, existing, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)
	assert.False(t, existing)
	assert.NotEmpty(t, name)

	m, ok := store.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Equal(t, name, m.CollectionName)
	assert.Zero(t, m.DocumentCount)
	assert.Nil(t, m.LastIndexed)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestStore_GetOrCreate_Stable(t *testing.T) {
	store, _ := newTestStore(t)

	first, existing, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)
	require.False(t, existing)

	second, existing, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)
	assert.True(t, existing, "second call must report an existing mapping")
	assert.Equal(t, first, second, "collection name must never be regenerated")
}

func TestStore_GetOrCreate_EmptyKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.GetOrCreate("")
	assert.ErrorIs(t, err, core.ErrEmptySource)
}

func TestStore_PersistsAcrossReloads(t *testing.T) {
	store, path := newTestStore(t)

	name, _, err := store.GetOrCreate("https://example.com/docs")
	require.NoError(t, err)
	store.RecordIndexingResult("https://example.com/docs", 23)

	reloaded := NewStore(path)
	got, existing, err := reloaded.GetOrCreate("https://example.com/docs")
	require.NoError(t, err)
	assert.True(t, existing)
	assert.Equal(t, name, got)

	m, ok := reloaded.Get("https://example.com/docs")
	require.True(t, ok)
	assert.Equal(t, 23, m.DocumentCount)
	require.NotNil(t, m.LastIndexed)
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewStore(path)
	assert.Empty(t, store.ListAll(), "corrupt file must fall back to an empty store")
}

func TestStore_RecordIndexingResult(t *testing.T) {
	store, _ := newTestStore(t)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	indexed := created.Add(time.Minute)
	clock := created
	store.now = func() time.Time { return clock }

	_, _, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)

	clock = indexed
	store.RecordIndexingResult("docs/sample.txt", 23)

	m, ok := store.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Equal(t, 23, m.DocumentCount)
	require.NotNil(t, m.LastIndexed)
	assert.True(t, m.LastIndexed.After(m.CreatedAt), "last indexed must be after creation")
}

func TestStore_RecordIndexingResult_UnknownKey(t *testing.T) {
	store, _ := newTestStore(t)

	// Must be a no-op, not a panic or a new mapping.
	store.RecordIndexingResult("never-seen", 10)
	assert.Empty(t, store.ListAll())
}

func TestStore_FindSourceKeyByCollection(t *testing.T) {
	store, _ := newTestStore(t)

	name, _, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)

	key, ok := store.FindSourceKeyByCollection(name)
	require.True(t, ok)
	assert.Equal(t, "docs/sample.txt", key)

	_, ok = store.FindSourceKeyByCollection("rag_missing_00000000")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	store, path := newTestStore(t)

	_, _, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)

	assert.True(t, store.Delete("docs/sample.txt"))
	assert.False(t, store.Delete("docs/sample.txt"), "second delete must report absence")

	reloaded := NewStore(path)
	_, ok := reloaded.Get("docs/sample.txt")
	assert.False(t, ok, "deletion must persist")
}

func TestStore_ListAll_Snapshot(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.GetOrCreate("docs/sample.txt")
	require.NoError(t, err)

	snapshot := store.ListAll()
	snapshot["docs/sample.txt"].DocumentCount = 999

	m, ok := store.Get("docs/sample.txt")
	require.True(t, ok)
	assert.Zero(t, m.DocumentCount, "mutating a snapshot must not affect the store")
}
