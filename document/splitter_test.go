package document

import (
	"strings"
	"testing"

	"github.com/poiesic/ragdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

func TestNewSplitter_Validation(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSplitter(tc.size, tc.overlap)
			assert.ErrorIs(t, err, core.ErrInvalidChunking)
		})
	}
}

func TestSplitter_Split_Empty(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	_, err = s.Split(nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestSplitter_Split_ShortDocumentSingleChunk(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	chunks, err := s.Split([]schema.Document{{PageContent: "short text"}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].PageContent)
	assert.Equal(t, 0, chunks[0].Metadata["start_index"])
}

func TestSplitter_Split_StartOffsets(t *testing.T) {
	// Several sentences, tiny chunks, so splitting is guaranteed.
	text := strings.Repeat("one two three four five six seven eight nine ten. ", 20)
	s, err := NewSplitter(80, 20)
	require.NoError(t, err)

	chunks, err := s.Split([]schema.Document{{
		PageContent: text,
		Metadata:    map[string]any{"source": "docs/sample.txt"},
	}})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	prev := -1
	for _, chunk := range chunks {
		start, ok := chunk.Metadata["start_index"].(int)
		require.True(t, ok, "every chunk must carry a start offset")
		assert.Greater(t, start, prev, "offsets must be strictly increasing")
		assert.Equal(t, "docs/sample.txt", chunk.Metadata["source"], "source metadata must carry over")
		// The offset must actually locate the chunk text.
		assert.Equal(t, chunk.PageContent, text[start:start+len(chunk.PageContent)])
		prev = start
	}
}

func TestSplitter_Split_PreservesDocumentOrder(t *testing.T) {
	s, err := NewSplitter(1000, 0)
	require.NoError(t, err)

	chunks, err := s.Split([]schema.Document{
		{PageContent: "alpha"},
		{PageContent: "beta"},
		{PageContent: "gamma"},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "alpha", chunks[0].PageContent)
	assert.Equal(t, "beta", chunks[1].PageContent)
	assert.Equal(t, "gamma", chunks[2].PageContent)
}
