package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	loadSql "github.com/siherrmann/chipnews/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	SelectChunk(id uuid.UUID) (*model.Chunk, error)
	SelectAllChunks() ([]*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error)
	CountChunks() (int, error)
	DeleteAllChunks() (int, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk. A zero chunk ID is replaced by a generated one.
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	var id any
	if chunk.ID != uuid.Nil {
		id = chunk.ID
	}
	var embedding any
	if len(chunk.Embedding) > 0 {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7)`,
		id,
		chunk.Content,
		embedding,
		chunk.ChunkIndex,
		chunk.StartPos,
		chunk.EndPos,
		chunk.Metadata,
	)

	err := scanChunk(row, chunk)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(id uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectAllChunks retrieves all chunks in insertion order
func (h *ChunksDBHandler) SelectAllChunks() ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_chunks()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity performs cosine vector similarity search.
// Equal distances keep insertion order.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2)`,
		embeddingVector,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	results := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		var vector pgvector.Vector
		err := rows.Scan(
			&chunk.ID,
			&chunk.Content,
			&vector,
			&chunk.ChunkIndex,
			&chunk.StartPos,
			&chunk.EndPos,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Similarity,
			&chunk.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunk.Embedding = vector.Slice()

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// CountChunks returns the number of stored chunks
func (h *ChunksDBHandler) CountChunks() (int, error) {
	var count int
	err := h.db.Instance.QueryRow(`SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteAllChunks removes every chunk and returns how many were deleted
func (h *ChunksDBHandler) DeleteAllChunks() (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(`SELECT delete_all_chunks()`).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

var _ rowScanner = (*sql.Row)(nil)

func scanChunk(row rowScanner, chunk *model.Chunk) error {
	var vector *pgvector.Vector
	err := row.Scan(
		&chunk.ID,
		&chunk.Content,
		&vector,
		&chunk.ChunkIndex,
		&chunk.StartPos,
		&chunk.EndPos,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return err
	}
	if vector != nil {
		chunk.Embedding = vector.Slice()
	}
	return nil
}
