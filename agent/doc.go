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

// Package agent implements the retrieval-augmented chat agent.
//
// The agent exposes a single retrieve_context tool to the chat model and
// runs the model's tool-call loop: when the model asks for context, the
// agent searches the session's active collection and feeds the results
// back as a tool response, repeating until the model produces a final
// answer. Conversation turns are persisted per session when a history
// repository is attached.
package agent
