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


package core

import (
	"time"
)

// ID is a unique identifier for stored entities.
// It is generated from database sequences.
type ID uint64

// SourceMapping records the vector collection assigned to one indexed source
// (a file path, directory, or URL). The source key itself is the map key in
// the identity store, not a field of the mapping.
//
// CollectionName is generated once and never changes for the life of the
// mapping: re-indexing the same source reuses the same collection.
// DocumentCount and LastIndexed are only written together, after a fully
// successful indexing run.
type SourceMapping struct {
	CollectionName string     `json:"collection_name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastIndexed    *time.Time `json:"last_indexed"`
	DocumentCount  int        `json:"document_count"`
}

// Clone returns a deep copy of the mapping.
// Used to hand out snapshots without exposing internal state.
func (m *SourceMapping) Clone() *SourceMapping {
	c := *m
	if m.LastIndexed != nil {
		t := *m.LastIndexed
		c.LastIndexed = &t
	}
	return &c
}

// Role identifies the author of a chat turn.
type Role int

const (
	// RoleHuman represents the user.
	RoleHuman Role = iota + 1
	// RoleAI represents the assistant.
	RoleAI
)

// ChatTurn is a single message in a conversation with the agent.
// Turns are persisted per session so a conversation can be resumed.
type ChatTurn struct {
	Id         ID
	SessionID  string // UUID of the chat session this turn belongs to
	Role       Role
	Contents   string
	Timestamp  time.Time // When the message was produced
	InsertedAt time.Time // When the turn was persisted
}
