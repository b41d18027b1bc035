package search

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/siherrmann/chipnews/model"
)

// Engine expands, classifies, ranks and caches web search results.
type Engine struct {
	provider Provider
	cache    *Cache
	metrics  *Metrics
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache replaces the default 30 minute cache.
func WithCache(size int, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.cache = NewCache(size, ttl)
	}
}

// WithMetrics counts cache hits and misses.
func WithMetrics(metrics *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// NewEngine creates a search engine on top of a provider.
func NewEngine(provider Provider, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		provider: provider,
		cache:    NewCache(defaultCacheSize, DefaultCacheTTL),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the capability name.
func (e *Engine) Name() string {
	return "search"
}

// SearchWithFocus raises minRelevance according to the focus and searches.
func (e *Engine) SearchWithFocus(ctx context.Context, query string, maxResults int, focus model.Focus, minRelevance float64) []model.SearchResult {
	return e.Search(ctx, query, maxResults, focus.MinRelevance(minRelevance))
}

// Search returns at most maxResults classified results, best first.
// Consumer content is dropped when minRelevance is above 0.3.
// Provider errors are logged and give an empty result.
func (e *Engine) Search(ctx context.Context, query string, maxResults int, minRelevance float64) []model.SearchResult {
	key := CacheKey(query, maxResults)
	if cached, ok := e.cache.Get(key); ok {
		e.countCache(true)
		e.logger.Debug("Search cache hit", slog.String("query", query))
		return cached
	}
	e.countCache(false)

	expanded := ExpandQuery(query)
	raw, err := e.provider.Search(ctx, expanded, maxResults*3)
	if err != nil {
		e.logger.Error("Search provider failed", slog.String("query", query), slog.String("error", err.Error()))
		return []model.SearchResult{}
	}

	results := make([]model.SearchResult, 0, len(raw))
	for _, r := range raw {
		result := Classify(r, query, expanded)
		if result.ContentType == model.ContentTypeConsumerContent && minRelevance > 0.3 {
			continue
		}
		results = append(results, result)
	}

	slices.SortStableFunc(results, func(a, b model.SearchResult) int {
		return b.Priority() - a.Priority()
	})
	if len(results) > maxResults {
		results = results[:max(maxResults, 0)]
	}

	e.cache.Set(key, results)
	e.logger.Debug("Search done", slog.String("query", query), slog.Int("raw", len(raw)), slog.Int("results", len(results)))

	return results
}

func (e *Engine) countCache(hit bool) {
	if e.metrics == nil {
		return
	}
	if hit {
		e.metrics.CacheHits.Inc()
	} else {
		e.metrics.CacheMisses.Inc()
	}
}
