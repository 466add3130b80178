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


package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragdex/core"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter breaks documents into overlapping chunks sized for embedding.
// Each chunk carries its source document's metadata plus a "start_index"
// key holding the chunk's character offset in the source text.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Overlap must be non-negative and strictly less than the chunk size.
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if err := core.ValidateChunking(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}

	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       slog.Default().With("component", "splitter"),
	}, nil
}

// Split chunks all documents, preserving document order and chunk order
// within each document.
func (s *Splitter) Split(docs []schema.Document) ([]schema.Document, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: nothing to split", ErrNoDocuments)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	var chunks []schema.Document
	for _, doc := range docs {
		texts, err := splitter.SplitText(doc.PageContent)
		if err != nil {
			return nil, fmt.Errorf("failed to split document: %w", err)
		}

		// Overlapping chunks can repeat text, so resume each offset search
		// just past the previous chunk's start.
		searchFrom := 0
		for _, text := range texts {
			start := strings.Index(doc.PageContent[searchFrom:], text)
			if start >= 0 {
				start += searchFrom
				searchFrom = start + 1
			} else {
				start = strings.Index(doc.PageContent, text)
			}

			metadata := make(map[string]any, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata["start_index"] = start

			chunks = append(chunks, schema.Document{
				PageContent: text,
				Metadata:    metadata,
			})
		}
	}

	s.logger.Info("split documents into chunks", "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}
