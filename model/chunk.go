package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a bounded span of an article's indexing text, the unit of vector retrieval.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	StartPos   int       `json:"start_pos"`
	EndPos     int       `json:"end_pos"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
	Distance   float64 `json:"distance,omitempty"`
}
