package storage

import (
	"testing"
	"time"

	"github.com/poiesic/ragdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalID_RoundTrip(t *testing.T) {
	for _, id := range []core.ID{0, 1, 42, ^core.ID(0)} {
		got, err := UnmarshalID(MarshalID(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestUnmarshalID_Truncated(t *testing.T) {
	_, err := UnmarshalID([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalChatTurn_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	turn := &core.ChatTurn{
		Id:         7,
		SessionID:  "session-1",
		Role:       core.RoleAI,
		Contents:   "the answer is in docs/sample.txt",
		Timestamp:  now,
		InsertedAt: now,
	}

	data, err := MarshalChatTurn(turn)
	require.NoError(t, err)

	got, err := UnmarshalChatTurn(data)
	require.NoError(t, err)
	assert.Equal(t, turn, got)
}

func TestUnmarshalChatTurn_Corrupt(t *testing.T) {
	_, err := UnmarshalChatTurn([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
