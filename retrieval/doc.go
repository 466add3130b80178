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

// Package retrieval answers queries against an indexed collection.
//
// Which collection answers a query is carried by a Session rather than
// process-wide state, so concurrent conversations cannot clobber each
// other's selection. Store handles are acquired per call; acquisition is
// cheap and caching them would only add an invalidation problem.
package retrieval
