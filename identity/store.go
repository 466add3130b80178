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


package identity

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/poiesic/ragdex/core"
)

// Store is the persistent source-to-collection identity store.
//
// It owns all mappings: the full set is loaded eagerly at construction and
// the backing JSON document is rewritten in full after every mutation.
// A load failure falls back to an empty store (losing prior mappings is
// preferred over refusing to start); a save failure is logged and the
// in-memory state remains authoritative for the rest of the process.
//
// The store is safe for concurrent use within one process. Concurrent
// processes sharing the same file are not coordinated: the last writer
// wins at save time.
type Store struct {
	path     string
	mu       sync.Mutex
	mappings map[string]*core.SourceMapping
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates a store backed by the JSON document at path.
// Existing mappings are loaded immediately; an unreadable or corrupt file
// yields an empty store with a warning.
func NewStore(path string) *Store {
	s := &Store{
		path:     path,
		mappings: make(map[string]*core.SourceMapping),
		logger:   slog.Default().With("component", "identity-store"),
		now:      time.Now,
	}
	s.load()
	return s
}

// GetOrCreate returns the collection name for a source key, generating and
// persisting a new mapping when the key is unknown. The second return value
// reports whether the key was already mapped.
//
// Once assigned, a collection name is never regenerated for the same key.
func (s *Store) GetOrCreate(sourceKey string) (string, bool, error) {
	if sourceKey == "" {
		return "", false, core.ErrEmptySource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.mappings[sourceKey]; ok {
		s.logger.Info("found existing collection for source", "source", sourceKey, "collection", m.CollectionName)
		return m.CollectionName, true, nil
	}

	name := CollectionName(sourceKey)
	s.mappings[sourceKey] = &core.SourceMapping{
		CollectionName: name,
		CreatedAt:      s.now(),
		LastIndexed:    nil,
		DocumentCount:  0,
	}
	s.save()

	s.logger.Info("created new collection mapping", "source", sourceKey, "collection", name)
	return name, false, nil
}

// RecordIndexingResult records a successful indexing run for a source:
// LastIndexed is set to now and DocumentCount to documentCount, together.
// Unknown keys are a logged no-op so a failed run cannot create state.
func (s *Store) RecordIndexingResult(sourceKey string, documentCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[sourceKey]
	if !ok {
		s.logger.Warn("ignoring indexing result for unknown source", "source", sourceKey)
		return
	}

	now := s.now()
	m.LastIndexed = &now
	m.DocumentCount = documentCount
	s.save()
}

// ListAll returns a snapshot of all mappings keyed by source.
func (s *Store) ListAll() map[string]*core.SourceMapping {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*core.SourceMapping, len(s.mappings))
	for key, m := range s.mappings {
		out[key] = m.Clone()
	}
	return out
}

// Get returns a snapshot of the mapping for a source key, if present.
func (s *Store) Get(sourceKey string) (*core.SourceMapping, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[sourceKey]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// FindSourceKeyByCollection returns the source key mapped to a collection
// name. Linear scan, display use only.
func (s *Store) FindSourceKeyByCollection(collectionName string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, m := range s.mappings {
		if m.CollectionName == collectionName {
			return key, true
		}
	}
	return "", false
}

// Delete removes the mapping for a source key and reports whether it existed.
// The backing vector collection is not touched.
func (s *Store) Delete(sourceKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mappings[sourceKey]; !ok {
		return false
	}
	delete(s.mappings, sourceKey)
	s.save()

	s.logger.Info("deleted mapping for source", "source", sourceKey)
	return true
}

// load reads the full mapping set from disk. Must only be called during
// construction, before the store is shared.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to load mappings, starting empty", "path", s.path, "err", err)
		}
		return
	}

	var mappings map[string]*core.SourceMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		s.logger.Warn("failed to parse mappings, starting empty", "path", s.path, "err", err)
		return
	}
	if mappings != nil {
		s.mappings = mappings
	}
}

// save rewrites the full mapping set. Must be called with the lock held.
// Failures are logged, not returned: in-memory state stays authoritative.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.mappings, "", "  ")
	if err != nil {
		s.logger.Error("failed to marshal mappings", "err", err)
		return
	}

	// Write-all via temp file + rename so readers never see a partial document.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".mappings-*.json")
	if err != nil {
		s.logger.Error("failed to save mappings", "path", s.path, "err", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Error("failed to save mappings", "path", s.path, "err", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.logger.Error("failed to save mappings", "path", s.path, "err", err)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.logger.Error("failed to save mappings", "path", s.path, "err", err)
		return
	}

	s.logger.Debug("saved mappings", "path", s.path, "count", len(s.mappings))
}
