package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/siherrmann/chipnews/core/pipeline"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// IndexFileName is the file inside an index directory holding the chunks.
const IndexFileName = "index.json"

// Index is an in-memory vector index over article chunks.
// It is built once and then only read.
type Index struct {
	mu       sync.RWMutex
	chunks   []*model.Chunk
	embedder pipeline.EmbedFunc
	logger   *slog.Logger
}

// NewIndex creates an empty index using the embedder for queries.
func NewIndex(embedder pipeline.EmbedFunc, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		chunks:   []*model.Chunk{},
		embedder: embedder,
		logger:   logger,
	}
}

// BuildIndex chunks and embeds every article. Articles whose chunks all fail
// to embed are logged and skipped. An index left empty although articles were
// given is an index build error.
func BuildIndex(ctx context.Context, p *pipeline.Pipeline, articles []*model.Article, logger *slog.Logger) (*Index, error) {
	index := NewIndex(p.Embedder, logger)

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewError("build index", err)
		}

		result, err := p.Process(article.Document(), article.Metadata())
		if err != nil {
			index.logger.Warn("Skipping article", slog.String("headline", article.Headline), slog.String("error", err.Error()))
			continue
		}
		if result.Failed > 0 {
			index.logger.Warn("Dropped chunks without embedding", slog.String("headline", article.Headline), slog.Int("failed", result.Failed))
		}

		index.add(result.Chunks...)
	}

	if len(articles) > 0 && index.Len() == 0 {
		return nil, helper.NewError("build index", fmt.Errorf("%w: no chunks indexed from %d articles", model.ErrIndexBuild, len(articles)))
	}

	index.logger.Info("Built index", slog.Int("articles", len(articles)), slog.Int("chunks", index.Len()))

	return index, nil
}

func (i *Index) add(chunks ...*model.Chunk) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.chunks = append(i.chunks, chunks...)
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks)
}

// Chunks returns the indexed chunks in insertion order.
func (i *Index) Chunks() []*model.Chunk {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.chunks)
}

// Query embeds text and returns the min(k, n) chunks closest by cosine
// distance, nearest first. Ties keep insertion order.
func (i *Index) Query(text string, k int) ([]*model.Chunk, error) {
	if k <= 0 {
		k = model.DefaultIndexConfig().TopK
	}

	embedding, err := i.embedder(text)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	i.mu.RLock()
	results := make([]*model.Chunk, 0, len(i.chunks))
	for _, chunk := range i.chunks {
		similarity := cosineSimilarity(embedding, chunk.Embedding)
		hit := *chunk
		hit.Similarity = similarity
		hit.Distance = 1 - similarity
		results = append(results, &hit)
	}
	i.mu.RUnlock()

	slices.SortStableFunc(results, func(a, b *model.Chunk) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	return results[:min(k, len(results))], nil
}

// Persist writes the index to dir/index.json, creating dir if needed.
func (i *Index) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return helper.NewError("create index directory", err)
	}

	i.mu.RLock()
	data, err := json.Marshal(i.chunks)
	i.mu.RUnlock()
	if err != nil {
		return helper.NewError("marshal index", err)
	}

	path := filepath.Join(dir, IndexFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return helper.NewError("write index", err)
	}

	i.logger.Info("Persisted index", slog.String("path", path), slog.Int("chunks", i.Len()))

	return nil
}

// Load restores an index persisted to dir. A missing directory or index
// file is an index not found error.
func Load(dir string, embedder pipeline.EmbedFunc, logger *slog.Logger) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, helper.NewError("load index", fmt.Errorf("%w: %s", model.ErrIndexNotFound, dir))
	} else if err != nil {
		return nil, helper.NewError("read index", err)
	}

	index := NewIndex(embedder, logger)
	if err := json.Unmarshal(data, &index.chunks); err != nil {
		return nil, helper.NewError("unmarshal index", err)
	}

	index.logger.Info("Loaded index", slog.String("dir", dir), slog.Int("chunks", index.Len()))

	return index, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
