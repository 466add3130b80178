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
	"fmt"
)

// ValidateChunking validates chunk splitting parameters.
//
// Validation rules:
//   - chunkSize must be positive
//   - chunkOverlap must not be negative
//   - chunkOverlap must be strictly less than chunkSize
func ValidateChunking(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, chunkSize)
	}
	if chunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative, got %d", ErrInvalidChunking, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return fmt.Errorf("%w: chunk overlap (%d) must be less than chunk size (%d)", ErrInvalidChunking, chunkOverlap, chunkSize)
	}
	return nil
}

// ValidateChatTurn validates a ChatTurn according to domain rules.
//
// Validation rules:
//   - SessionID must not be empty
//   - Contents must not be empty
//   - Role must be valid (Human or AI)
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - Timestamps (populated by the repository)
func ValidateChatTurn(turn *ChatTurn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidChatTurn)
	}

	if turn.SessionID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrEmptySessionID)
	}

	if turn.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, ErrEmptyContent)
	}

	if err := ValidateRole(turn.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChatTurn, err)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleHuman && role != RoleAI {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}
