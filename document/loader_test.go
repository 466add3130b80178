package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/ragdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoader_LoadFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sample.txt", "hello world")

	docs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello world", docs[0].PageContent)
	assert.Equal(t, path, docs[0].Metadata["source"])
}

func TestLoader_LoadFile_Unsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image.png", "not text")

	_, err := NewLoader().Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLoader_Load_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, core.ErrSourceNotFound)
}

func TestLoader_Load_EmptySource(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptySource)
}

func TestLoader_LoadDirectory_OrderedByPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "second")
	writeFile(t, dir, "a.txt", "first")
	writeFile(t, dir, "c.txt", "third")
	writeFile(t, dir, "skip.bin", "ignored")

	docs, err := NewLoader(WithPoolSize(4)).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "first", docs[0].PageContent)
	assert.Equal(t, "second", docs[1].PageContent)
	assert.Equal(t, "third", docs[2].PageContent)
}

func TestLoader_LoadDirectory_Empty(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestLoader_LoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>page text</p></body></html>"))
	}))
	defer srv.Close()

	docs, err := NewLoader().Load(context.Background(), srv.URL+"/docs")
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Contains(t, docs[0].PageContent, "page text")
	assert.Equal(t, srv.URL+"/docs", docs[0].Metadata["source"])
}

func TestLoader_LoadURL_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewLoader().Load(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/docs"))
	assert.True(t, IsURL("http://localhost:8080"))
	assert.False(t, IsURL("docs/sample.txt"))
	assert.False(t, IsURL("/absolute/path"))
}
