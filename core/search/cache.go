package search

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/siherrmann/chipnews/model"
)

const (
	// DefaultCacheTTL is how long search results stay cached.
	DefaultCacheTTL  = 30 * time.Minute
	defaultCacheSize = 1024
)

// Cache keeps ranked search results for a limited time.
// It is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, []model.SearchResult]
}

// NewCache creates a cache holding up to size result lists for ttl.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[string, []model.SearchResult](size, nil, ttl)}
}

// CacheKey hashes the original query together with the result limit.
func CacheKey(query string, maxResults int) string {
	sum := md5.Sum(fmt.Appendf(nil, "%s_%d", query, maxResults))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the cached results. An empty cached list is a miss.
func (c *Cache) Get(key string) ([]model.SearchResult, bool) {
	results, ok := c.lru.Get(key)
	if !ok || len(results) == 0 {
		return nil, false
	}
	return slices.Clone(results), true
}

// Set caches a copy of the results.
func (c *Cache) Set(key string, results []model.SearchResult) {
	c.lru.Add(key, slices.Clone(results))
}

// Len returns the number of cached result lists.
func (c *Cache) Len() int {
	return c.lru.Len()
}
