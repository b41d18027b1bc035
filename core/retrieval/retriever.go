package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/siherrmann/chipnews/helper"
)

const (
	// NoChunksFound is returned by Retrieve when nothing matches.
	NoChunksFound = "NO CHUNKS_FOUND"

	maxChunkChars   = 1500
	truncatedSuffix = " ...[truncated]"
)

// Retriever formats nearest chunks as context for a worker prompt.
type Retriever struct {
	searcher Searcher
}

// NewRetriever creates a retriever over a searcher.
func NewRetriever(searcher Searcher) *Retriever {
	return &Retriever{searcher: searcher}
}

// Name returns the capability name.
func (r *Retriever) Name() string {
	return "retriever"
}

// Retrieve returns the k nearest chunks, each rendered as
// "--- CHUNK i ---" followed by its text and its metadata.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chunks, err := r.searcher.Query(query, k)
	if err != nil {
		return "", helper.NewError("retrieve", err)
	}
	if len(chunks) == 0 {
		return NoChunksFound, nil
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			metadata = []byte("{}")
		}
		parts = append(parts, fmt.Sprintf(
			"--- CHUNK %d ---\n%s\nMETADATA: %s\n",
			i+1,
			helper.Truncate(chunk.Content, maxChunkChars, truncatedSuffix),
			metadata,
		))
	}

	return strings.Join(parts, "\n\n"), nil
}
