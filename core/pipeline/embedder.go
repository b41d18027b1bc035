package pipeline

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/chipnews/helper"
)

// DefaultEmbeddingModel is the sentence transformer used by DefaultEmbedder.
const DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultEmbedder creates an embedder using a real sentence transformer model
// Uses the all-MiniLM-L6-v2 model which produces 384-dimensional embeddings
func DefaultEmbedder() (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(DefaultEmbeddingModel, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "chipnews-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}

// CachedEmbedder wraps an embedder with an expiring LRU cache keyed by text.
// A non-positive size or ttl returns the embedder unchanged.
func CachedEmbedder(embed EmbedFunc, size int, ttl time.Duration) EmbedFunc {
	if embed == nil || size <= 0 || ttl <= 0 {
		return embed
	}

	cache := expirable.NewLRU[string, []float32](size, nil, ttl)
	return func(text string) ([]float32, error) {
		if cached, ok := cache.Get(text); ok {
			return cloneEmbedding(cached), nil
		}
		embedding, err := embed(text)
		if err != nil {
			return nil, err
		}
		cache.Add(text, cloneEmbedding(embedding))
		return embedding, nil
	}
}

func cloneEmbedding(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
