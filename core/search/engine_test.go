package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	results []model.RawResult
	err     error
	calls   int
	queries []string
	maxes   []int
}

func (f *fakeProvider) Search(ctx context.Context, query string, max int) ([]model.RawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	f.maxes = append(f.maxes, max)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func mixedResults() []model.RawResult {
	return []model.RawResult{
		{Title: "Chip roundup", Href: "https://someblog.example.org/a", Body: "weekly notes"},
		{Title: "RTX 5090 gaming review", Href: "https://www.tomshardware.com/b", Body: "fps numbers"},
		{Title: "Intel enterprise update", Href: "https://techcrunch.com/c", Body: ""},
		{Title: "Nvidia revenue beats, $30 billion quarter", Href: "https://www.reuters.com/d", Body: ""},
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestEngineSearch(t *testing.T) {
	t.Run("Ranks premium over established over unknown", func(t *testing.T) {
		provider := &fakeProvider{results: mixedResults()}
		engine := NewEngine(provider, nil)

		results := engine.Search(context.Background(), "nvidia earnings", 5, 0.5)
		require.Len(t, results, 3, "Expected consumer content to be dropped")
		assert.Equal(t, "https://www.reuters.com/d", results[0].URL)
		assert.Equal(t, "https://techcrunch.com/c", results[1].URL)
		assert.Equal(t, "https://someblog.example.org/a", results[2].URL)
		assert.Equal(t, 15, provider.maxes[0], "Expected three times maxResults raw results")
		assert.Equal(t, ExpandQuery("nvidia earnings"), provider.queries[0])
	})

	t.Run("Keeps consumer content with a low relevance floor", func(t *testing.T) {
		engine := NewEngine(&fakeProvider{results: mixedResults()}, nil)

		results := engine.Search(context.Background(), "nvidia", 5, 0.2)
		require.Len(t, results, 4)
		assert.Equal(t, model.ContentTypeConsumerContent, results[2].ContentType)
		assert.Equal(t, model.SourceTierSpecialized, results[2].SourceTier)
	})

	t.Run("Ties keep provider order", func(t *testing.T) {
		engine := NewEngine(&fakeProvider{results: []model.RawResult{
			{Title: "first", Href: "https://a.example.org"},
			{Title: "second", Href: "https://b.example.org"},
			{Title: "third", Href: "https://c.example.org"},
		}}, nil)

		results := engine.Search(context.Background(), "chips", 2, 0.5)
		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].Title)
		assert.Equal(t, "second", results[1].Title)
	})

	t.Run("Second call is answered from the cache", func(t *testing.T) {
		provider := &fakeProvider{results: mixedResults()}
		metrics := NewMetrics(prometheus.NewRegistry())
		engine := NewEngine(provider, nil, WithMetrics(metrics))

		first := engine.Search(context.Background(), "nvidia", 5, 0.5)
		second := engine.Search(context.Background(), "nvidia", 5, 0.5)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, provider.calls, "Expected the provider to be called once")
		assert.Equal(t, 1.0, counterValue(t, metrics.CacheHits))
		assert.Equal(t, 1.0, counterValue(t, metrics.CacheMisses))

		engine.Search(context.Background(), "nvidia", 6, 0.5)
		assert.Equal(t, 2, provider.calls, "Expected maxResults to be part of the cache key")
	})

	t.Run("Cache entries expire", func(t *testing.T) {
		provider := &fakeProvider{results: mixedResults()}
		engine := NewEngine(provider, nil, WithCache(16, 50*time.Millisecond))

		engine.Search(context.Background(), "nvidia", 5, 0.5)
		time.Sleep(120 * time.Millisecond)
		engine.Search(context.Background(), "nvidia", 5, 0.5)
		assert.Equal(t, 2, provider.calls, "Expected an expired entry to query the provider again")
	})

	t.Run("Empty results are not served from the cache", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := NewEngine(provider, nil)

		assert.Empty(t, engine.Search(context.Background(), "nothing", 5, 0.5))
		assert.Empty(t, engine.Search(context.Background(), "nothing", 5, 0.5))
		assert.Equal(t, 2, provider.calls)
	})

	t.Run("Provider error gives an empty result", func(t *testing.T) {
		provider := &fakeProvider{err: fmt.Errorf("%w: boom", model.ErrSearchProvider)}
		engine := NewEngine(provider, nil)

		results := engine.Search(context.Background(), "nvidia", 5, 0.5)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("Mutating a result does not touch the cache", func(t *testing.T) {
		engine := NewEngine(&fakeProvider{results: mixedResults()}, nil)

		first := engine.Search(context.Background(), "nvidia", 5, 0.5)
		first[0].Title = "changed"
		second := engine.Search(context.Background(), "nvidia", 5, 0.5)
		assert.NotEqual(t, "changed", second[0].Title)
	})
}

func TestEngineConcurrentSearch(t *testing.T) {
	provider := &fakeProvider{results: mixedResults()}
	metrics := NewMetrics(prometheus.NewRegistry())
	engine := NewEngine(provider, nil, WithMetrics(metrics))

	queries := []string{"nvidia", "amd", "intel", "tsmc"}
	want := map[string][]model.SearchResult{}
	for _, query := range queries {
		want[query] = NewEngine(&fakeProvider{results: mixedResults()}, nil).Search(context.Background(), query, 5, 0.5)
	}

	const goroutines = 16
	got := make([][]model.SearchResult, goroutines*len(queries))
	var wg sync.WaitGroup
	for g := range goroutines {
		for i, query := range queries {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[g*len(queries)+i] = engine.Search(context.Background(), query, 5, 0.5)
			}()
		}
	}
	wg.Wait()

	for i, results := range got {
		query := queries[i%len(queries)]
		assert.Equal(t, want[query], results, "Unexpected results for %s", query)
	}

	hits := counterValue(t, metrics.CacheHits)
	misses := counterValue(t, metrics.CacheMisses)
	assert.Equal(t, float64(len(got)), hits+misses, "Expected every search to count a hit or a miss")
	calls := func() int {
		provider.mu.Lock()
		defer provider.mu.Unlock()
		return provider.calls
	}
	assert.Equal(t, int(misses), calls(), "Expected one provider call per miss")
	assert.GreaterOrEqual(t, calls(), len(queries), "Expected every query to reach the provider at least once")

	for _, query := range queries {
		engine.Search(context.Background(), query, 5, 0.5)
	}
	assert.Equal(t, int(misses), calls(), "Expected warm cache entries to answer later searches")
}

func TestEngineSearchWithFocus(t *testing.T) {
	t.Run("Financial focus drops consumer content", func(t *testing.T) {
		engine := NewEngine(&fakeProvider{results: mixedResults()}, nil)

		results := engine.SearchWithFocus(context.Background(), "nvidia", 5, model.FocusFinancial, 0)
		for _, result := range results {
			assert.NotEqual(t, model.ContentTypeConsumerContent, result.ContentType)
		}
	})

	t.Run("Business focus keeps the floor", func(t *testing.T) {
		engine := NewEngine(&fakeProvider{results: mixedResults()}, nil)

		results := engine.SearchWithFocus(context.Background(), "nvidia", 5, model.FocusBusiness, 0.1)
		assert.Len(t, results, 4)
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("nvidia", 5), CacheKey("nvidia", 5))
	assert.NotEqual(t, CacheKey("nvidia", 5), CacheKey("nvidia", 6))
	assert.Len(t, CacheKey("nvidia", 5), 32)
}
