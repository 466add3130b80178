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


package storage

import (
	"context"

	"github.com/poiesic/ragdex/core"
)

// HistoryRepository persists conversation turns grouped by session.
// Implementations must be thread-safe and support concurrent access.
type HistoryRepository interface {
	// AddTurns adds one or more chat turns to storage.
	// Generates new IDs from sequence and sets InsertedAt; a zero Timestamp
	// is also set to now. Returns the turns with IDs and timestamps populated.
	AddTurns(ctx context.Context, turns ...*core.ChatTurn) ([]*core.ChatTurn, error)

	// GetTurn retrieves a single turn by ID.
	// Returns ErrNotFound if the turn doesn't exist.
	GetTurn(ctx context.Context, id core.ID) (*core.ChatTurn, error)

	// GetSessionTurns retrieves all turns of a session in insertion order.
	// An unknown session yields an empty slice, not an error.
	GetSessionTurns(ctx context.Context, sessionID string) ([]*core.ChatTurn, error)

	// GetRecentTurns retrieves up to limit turns of a session, most recent
	// first. Used to rebuild a conversation window for the chat model.
	GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*core.ChatTurn, error)

	// DeleteSession removes all turns of a session and returns how many
	// were deleted. Deleting an unknown session deletes zero turns.
	DeleteSession(ctx context.Context, sessionID string) (int, error)

	// ListSessions returns the IDs of all sessions with stored turns.
	ListSessions(ctx context.Context) ([]string, error)

	// Close releases resources held by the repository.
	Close() error
}
