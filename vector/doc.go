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


// Package vector talks to the Qdrant vector database.
//
// It has two halves: a lifecycle client for collection management
// (create-if-absent, existence checks, deletion) over Qdrant's REST API,
// and an Opener that acquires a document store for a named collection,
// backed by the langchaingo Qdrant vector store. Stores are acquired per
// call rather than cached; acquisition is a local struct construction, so
// there is nothing worth caching or invalidating.
package vector
