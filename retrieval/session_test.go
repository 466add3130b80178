package retrieval

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_NoActiveByDefault(t *testing.T) {
	s := NewSession()

	active, ok := s.Active()
	assert.False(t, ok)
	assert.Empty(t, active)
	assert.NotEmpty(t, s.ID())
}

func TestSession_SetActiveOverwrites(t *testing.T) {
	s := NewSession()

	s.SetActive("rag_docs_aabbccdd")
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "rag_docs_aabbccdd", active)

	s.SetActive("rag_other_11223344")
	active, _ = s.Active()
	assert.Equal(t, "rag_other_11223344", active)
}

func TestSession_Clear(t *testing.T) {
	s := NewSession()
	s.SetActive("rag_docs_aabbccdd")
	s.Clear()

	_, ok := s.Active()
	assert.False(t, ok)
}

func TestSession_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, NewSession().ID(), NewSession().ID())
}

func TestSession_IsolatedBetweenSessions(t *testing.T) {
	a := NewSession()
	b := NewSession()

	a.SetActive("rag_a_00000001")

	_, ok := b.Active()
	assert.False(t, ok, "selection in one session must not leak into another")
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetActive("rag_docs_aabbccdd")
		}()
		go func() {
			defer wg.Done()
			s.Active()
		}()
	}
	wg.Wait()

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "rag_docs_aabbccdd", active)
}
