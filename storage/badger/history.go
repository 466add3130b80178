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


package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragdex/core"
	"github.com/poiesic/ragdex/storage"
)

// HistoryRepository implements storage.HistoryRepository for BadgerDB.
type HistoryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a history repository on an open backend.
func NewHistoryRepository(backend *Backend) (storage.HistoryRepository, error) {
	idSeq, err := backend.GetSequence(chatTurnIDSeq)
	if err != nil {
		return nil, err
	}

	return &HistoryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *HistoryRepository) Close() error {
	return r.idSeq.Release()
}

// AddTurns adds one or more chat turns to storage.
func (r *HistoryRepository) AddTurns(ctx context.Context, turns ...*core.ChatTurn) ([]*core.ChatTurn, error) {
	for _, turn := range turns {
		if err := core.ValidateChatTurn(turn); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, turn := range turns {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			turn.Id = core.ID(nextID)

			turn.InsertedAt = time.Now().UTC()
			if turn.Timestamp.IsZero() {
				turn.Timestamp = turn.InsertedAt
			}

			value, err := storage.MarshalChatTurn(turn)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChatTurnKey(turn.Id), value); err != nil {
				return err
			}

			// Session index entry, so a conversation can be replayed in order
			sessionKey := makeSessionKey(turn.SessionID, turn.Id)
			if err := tx.Set(sessionKey, storage.MarshalID(turn.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return turns, err
}

// GetTurn retrieves a single turn by ID.
func (r *HistoryRepository) GetTurn(ctx context.Context, id core.ID) (*core.ChatTurn, error) {
	var result *core.ChatTurn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readTurn(tx, makeChatTurnKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSessionTurns retrieves all turns of a session in insertion order.
func (r *HistoryRepository) GetSessionTurns(ctx context.Context, sessionID string) ([]*core.ChatTurn, error) {
	var results []*core.ChatTurn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionPrefix(sessionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			turn, err := r.readIndexedTurn(tx, iter.Item())
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetRecentTurns retrieves up to limit turns of a session, most recent first.
func (r *HistoryRepository) GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*core.ChatTurn, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ChatTurn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the session's largest possible index key, then walk back.
		prefix := makeSessionPrefix(sessionID)
		startKey := makeSessionKey(sessionID, core.ID(^uint64(0)))

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			turn, err := r.readIndexedTurn(tx, iter.Item())
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteSession removes all turns of a session.
func (r *HistoryRepository) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect first: deleting while iterating invalidates the iterator.
		var indexKeys [][]byte
		var turnIDs []core.ID

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionPrefix(sessionID)
		iter := tx.NewIterator(opts)

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			indexKeys = append(indexKeys, item.KeyCopy(nil))

			var id core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			turnIDs = append(turnIDs, id)
		}
		iter.Close()

		for i, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
			if err := tx.Delete(makeChatTurnKey(turnIDs[i])); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ListSessions returns the IDs of all sessions with stored turns.
func (r *HistoryRepository) ListSessions(ctx context.Context) ([]string, error) {
	var sessions []string
	seen := make(map[string]bool)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chatSessionPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			sessionID, ok := sessionIDFromKey(iter.Item().Key())
			if !ok || seen[sessionID] {
				continue
			}
			seen[sessionID] = true
			sessions = append(sessions, sessionID)
		}
		return nil
	}, false)

	return sessions, err
}

// readTurn reads a chat turn from the transaction. A missing key yields
// (nil, nil).
func (r *HistoryRepository) readTurn(tx *badger.Txn, key []byte) (*core.ChatTurn, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var turn *core.ChatTurn
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		turn, unmarshalErr = storage.UnmarshalChatTurn(val)
		return unmarshalErr
	})
	return turn, err
}

// readIndexedTurn resolves a session index entry to its full turn.
func (r *HistoryRepository) readIndexedTurn(tx *badger.Txn, item *badger.Item) (*core.ChatTurn, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return r.readTurn(tx, makeChatTurnKey(id))
}
