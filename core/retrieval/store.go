package retrieval

import (
	"fmt"
	"log/slog"

	"github.com/siherrmann/chipnews/core/pipeline"
	"github.com/siherrmann/chipnews/database"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// Searcher answers nearest chunk queries.
type Searcher interface {
	Query(text string, k int) ([]*model.Chunk, error)
}

var (
	_ Searcher = (*Index)(nil)
	_ Searcher = (*DatabaseIndex)(nil)
)

// SaveToDatabase replaces the stored chunks with the chunks of the index.
func (i *Index) SaveToDatabase(chunks database.ChunksDBHandlerFunctions) error {
	deleted, err := chunks.DeleteAllChunks()
	if err != nil {
		return helper.NewError("delete chunks", err)
	}

	for _, chunk := range i.Chunks() {
		stored := *chunk
		if err := chunks.InsertChunk(&stored); err != nil {
			return helper.NewError("insert chunk", err)
		}
	}

	i.logger.Info("Saved index to database", slog.Int("replaced", deleted), slog.Int("chunks", i.Len()))

	return nil
}

// LoadFromDatabase restores an index from the stored chunks.
// An empty table is an index not found error.
func LoadFromDatabase(chunks database.ChunksDBHandlerFunctions, embedder pipeline.EmbedFunc, logger *slog.Logger) (*Index, error) {
	stored, err := chunks.SelectAllChunks()
	if err != nil {
		return nil, helper.NewError("select chunks", err)
	}
	if len(stored) == 0 {
		return nil, helper.NewError("load index from database", fmt.Errorf("%w: no chunks stored", model.ErrIndexNotFound))
	}

	index := NewIndex(embedder, logger)
	index.add(stored...)

	return index, nil
}

// DatabaseIndex queries chunks directly with pgvector similarity search.
type DatabaseIndex struct {
	chunks   database.ChunksDBHandlerFunctions
	embedder pipeline.EmbedFunc
}

// NewDatabaseIndex creates a searcher over the stored chunks.
func NewDatabaseIndex(chunks database.ChunksDBHandlerFunctions, embedder pipeline.EmbedFunc) *DatabaseIndex {
	return &DatabaseIndex{chunks: chunks, embedder: embedder}
}

// Query embeds text and returns the k nearest stored chunks.
func (d *DatabaseIndex) Query(text string, k int) ([]*model.Chunk, error) {
	if k <= 0 {
		k = model.DefaultIndexConfig().TopK
	}

	embedding, err := d.embedder(text)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	results, err := d.chunks.SelectChunksBySimilarity(embedding, k)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	return results, nil
}
