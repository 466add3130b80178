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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragdex/vector"
	"github.com/tmc/langchaingo/schema"
)

const (
	// NoActiveCollectionText is returned, with an empty document list, when a
	// query arrives on a session that has not selected a collection. Searching
	// a default instead would return plausible-looking but wrong context.
	NoActiveCollectionText = "No collection is currently active. Please index and select a source first."

	// NoDocumentsText is returned when the search matches nothing.
	NoDocumentsText = "No relevant documents found."

	defaultTopK = 3
)

// Retriever searches the session's active collection for context relevant
// to a query.
type Retriever struct {
	opener vector.Opener
	topK   int
	logger *slog.Logger
}

// NewRetriever creates a retriever returning up to topK documents per
// query. Non-positive topK falls back to 3.
func NewRetriever(opener vector.Opener, topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{
		opener: opener,
		topK:   topK,
		logger: slog.Default().With("component", "retriever"),
	}
}

// Retrieve searches the session's active collection and returns the
// results twice: formatted as context text for a model prompt, and as the
// raw ranked documents.
//
// A session with no active collection yields NoActiveCollectionText and an
// empty list; that is a normal outcome, not an error. Backend failures are
// returned as errors.
func (r *Retriever) Retrieve(ctx context.Context, session *Session, query string) (string, []schema.Document, error) {
	collection, ok := session.Active()
	if !ok {
		r.logger.Warn("retrieval requested with no active collection", "session", session.ID())
		return NoActiveCollectionText, nil, nil
	}

	store, err := r.opener.Open(collection)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open collection %s: %w", collection, err)
	}

	docs, err := store.SimilaritySearch(ctx, query, r.topK)
	if err != nil {
		return "", nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	if len(docs) == 0 {
		r.logger.Warn("no documents found", "collection", collection, "query", query)
		return NoDocumentsText, nil, nil
	}

	r.logger.Info("retrieved documents", "collection", collection, "count", len(docs))
	return formatDocuments(docs), docs, nil
}

// formatDocuments renders ranked documents as prompt-ready context text.
func formatDocuments(docs []schema.Document) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		source := doc.Metadata["source"]
		if source == nil {
			source = "unknown"
		}
		parts[i] = fmt.Sprintf("Source: %v\nContent: %s", source, doc.PageContent)
	}
	return strings.Join(parts, "\n\n")
}
