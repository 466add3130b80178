package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/ragdex/core"
)

// Key prefixes for different data types
const (
	chatTurnPrefix    = "chaturn"
	chatSessionPrefix = "chatses"
	chatTurnIDSeq     = "chaturnseq"
)

// makeChatTurnKey generates a key for a chat turn by ID.
func makeChatTurnKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chatTurnPrefix, id))
}

// makeSessionKey generates a composite key for the session index.
// Format: prefix:sessionID:id, with the id in BigEndian order so
// lexicographic iteration follows insertion order.
func makeSessionKey(sessionID string, id core.ID) []byte {
	prefix := makeSessionPrefix(sessionID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSessionPrefix generates the common prefix of one session's index keys.
func makeSessionPrefix(sessionID string) []byte {
	return []byte(chatSessionPrefix + ":" + sessionID + ":")
}

// sessionIDFromKey recovers the session ID from a session index key.
// The trailing 8 bytes are the BigEndian turn id.
func sessionIDFromKey(key []byte) (string, bool) {
	prefix := chatSessionPrefix + ":"
	if len(key) < len(prefix)+9 {
		return "", false
	}
	// Strip prefix and the ":"+id suffix.
	return string(key[len(prefix) : len(key)-9]), true
}
