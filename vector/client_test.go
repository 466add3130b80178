package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQdrant is a minimal in-memory stand-in for Qdrant's collections API.
type fakeQdrant struct {
	collections map[string]int // name -> vector size
	creates     int
	deletes     int
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{collections: make(map[string]int)}
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections/{name}/exists", func(w http.ResponseWriter, r *http.Request) {
		_, ok := f.collections[r.PathValue("name")]
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"exists": ok}})
	})
	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.collections[r.PathValue("name")] = body.Vectors.Size
		f.creates++
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})
	mux.HandleFunc("DELETE /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		delete(f.collections, r.PathValue("name"))
		f.deletes++
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeQdrant) {
	t.Helper()
	fake := newFakeQdrant()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "test-key")
	require.NoError(t, err)
	return client, fake
}

func TestNewClient_RequiresURLAndKey(t *testing.T) {
	_, err := NewClient("", "key")
	assert.ErrorIs(t, err, ErrURLRequired)

	_, err = NewClient("http://localhost:6333", "")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestClient_EnsureCollection_CreatesWhenAbsent(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	err := client.EnsureCollection(ctx, "rag_docs_abc12345", 384, DistanceCosine, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 384, fake.collections["rag_docs_abc12345"])
}

func TestClient_EnsureCollection_NoOpWhenPresent(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureCollection(ctx, "rag_docs_abc12345", 384, DistanceCosine, false))
	require.NoError(t, client.EnsureCollection(ctx, "rag_docs_abc12345", 384, DistanceCosine, false))
	assert.Equal(t, 1, fake.creates, "existing collection must not be recreated")
}

func TestClient_EnsureCollection_ForceRecreate(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureCollection(ctx, "rag_docs_abc12345", 384, DistanceCosine, false))
	require.NoError(t, client.EnsureCollection(ctx, "rag_docs_abc12345", 768, DistanceCosine, true))

	assert.Equal(t, 1, fake.deletes)
	assert.Equal(t, 2, fake.creates)
	assert.Equal(t, 768, fake.collections["rag_docs_abc12345"])
}

func TestClient_DeleteCollection_AbsentIsNoOp(t *testing.T) {
	client, fake := newTestClient(t)

	require.NoError(t, client.DeleteCollection(context.Background(), "rag_missing_00000000"))
	assert.Zero(t, fake.deletes, "deleting an absent collection must not issue a delete")
}

func TestClient_CollectionExists(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	exists, err := client.CollectionExists(ctx, "rag_docs_abc12345")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.CreateCollection(ctx, "rag_docs_abc12345", 384, DistanceCosine))

	exists, err = client.CollectionExists(ctx, "rag_docs_abc12345")
	require.NoError(t, err)
	assert.True(t, exists)
}
