package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// ChunkFunc splits text into ordered, overlapping spans
type ChunkFunc func(text string) ([]ChunkSpan, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// TripletExtractFunc extracts subject-relation-object triplets from text
type TripletExtractFunc func(text string) ([]model.RawTriplet, error)

// ChunkSpan is a chunk of text with its rune offsets in the source text.
// Consecutive spans overlap by PrevEnd-StartPos runes.
type ChunkSpan struct {
	Content    string
	StartPos   int
	EndPos     int
	ChunkIndex int
}

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker          ChunkFunc
	Embedder         EmbedFunc
	TripletExtractor TripletExtractFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SetTripletExtractor sets the triplet extraction function
func (p *Pipeline) SetTripletExtractor(extractor TripletExtractFunc) {
	p.TripletExtractor = extractor
}

// ProcessingResult contains the embedded chunks of one text.
type ProcessingResult struct {
	Chunks []*model.Chunk
	// Failed counts chunks whose embedding failed and that were dropped.
	Failed   int
	Triplets []model.RawTriplet
}

// Process splits text into chunks and embeds every chunk.
// Chunks whose embedding fails are dropped. If every chunk fails the
// result is an index build error wrapping the last embedding error.
func (p *Pipeline) Process(text string, metadata model.Metadata) (*ProcessingResult, error) {
	spans, err := p.Chunker(text)
	if err != nil {
		return nil, helper.NewError("chunk", err)
	}

	result := &ProcessingResult{
		Chunks: make([]*model.Chunk, 0, len(spans)),
	}

	var lastErr error
	for _, span := range spans {
		embedding, err := p.Embedder(span.Content)
		if err != nil {
			result.Failed++
			lastErr = err
			continue
		}

		chunkMetadata := make(model.Metadata, len(metadata))
		for k, v := range metadata {
			chunkMetadata[k] = v
		}

		result.Chunks = append(result.Chunks, &model.Chunk{
			ID:         uuid.New(),
			Content:    span.Content,
			Embedding:  embedding,
			ChunkIndex: span.ChunkIndex,
			StartPos:   span.StartPos,
			EndPos:     span.EndPos,
			Metadata:   chunkMetadata,
		})
	}

	if len(spans) > 0 && len(result.Chunks) == 0 {
		return result, helper.NewError("embed chunks", fmt.Errorf("%w: all %d chunks failed: %v", model.ErrIndexBuild, len(spans), lastErr))
	}

	if p.TripletExtractor != nil {
		triplets, err := p.TripletExtractor(text)
		if err == nil {
			result.Triplets = triplets
		}
	}

	return result, nil
}
