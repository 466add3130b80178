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

// Package index drives the indexing of a source into its vector collection.
//
// The Indexer loads and splits a source, ensures the backing collection
// exists with the right dimensionality, then writes chunks in sequential
// batches with per-batch retry and a fixed inter-batch pause. Results are
// recorded in the source identity store only after every batch succeeds.
package index
