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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunking indicates invalid chunk size/overlap parameters.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrEmptySource indicates an empty source path or URL.
	ErrEmptySource = errors.New("source cannot be empty")

	// ErrSourceNotFound indicates the source path does not exist on disk.
	ErrSourceNotFound = errors.New("source not found")

	// ErrInvalidChatTurn indicates a ChatTurn failed validation.
	ErrInvalidChatTurn = errors.New("invalid chat turn")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptySessionID indicates the SessionID field is empty.
	ErrEmptySessionID = errors.New("session id cannot be empty")
)
