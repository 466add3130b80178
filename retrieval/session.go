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


package retrieval

import (
	"sync"

	"github.com/google/uuid"
)

// Session carries per-conversation retrieval state: which collection
// answers this conversation's queries. Each conversation gets its own
// Session, so selections in concurrent conversations never interleave.
//
// A Session is safe for concurrent use.
type Session struct {
	id     string
	mu     sync.Mutex
	active string
}

// NewSession creates a session with a fresh unique id and no active
// collection.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// SetActive selects the collection that answers this session's queries,
// overwriting any previous selection.
func (s *Session) SetActive(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = collection
}

// Active returns the selected collection and whether one is set.
func (s *Session) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != ""
}

// Clear removes the selection. Subsequent queries report no active
// collection until SetActive is called again.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}
