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


// Package storage provides the conversation history storage layer for ragdex.
//
// It defines repository interfaces that decouple storage implementation
// from business logic, so different backends (BadgerDB, in-memory) can be
// used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	repo, err := badger.NewHistoryRepository(backend)  // returns storage.HistoryRepository
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, err := badger.NewHistoryRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Tests can use badger.NewMemoryHistory() for an in-memory repository.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
