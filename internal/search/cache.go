package search

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// CacheKey identifies one ranking: free text, encoded filters and sort order.
type CacheKey struct {
	MainQuery string
	Filters   string
	Sort      models.SortOrder
}

// NewCacheKey builds the key for a parsed query.
func NewCacheKey(parsed models.ParsedQuery, sort models.SortOrder) CacheKey {
	return CacheKey{MainQuery: parsed.MainQuery, Filters: parsed.Filters.Encode(), Sort: sort}
}

// Ranked is a scored candidate before rendering.
type Ranked struct {
	Candidate models.Candidate
	Score     float64
}

// ResultCache is a bounded LRU of rankings. It is safe for concurrent use.
// A nil *ResultCache is a disabled cache.
type ResultCache struct {
	lru *lru.Cache[CacheKey, []Ranked]
}

// NewResultCache creates a cache holding up to size rankings.
// A size <= 0 returns a nil, disabled cache.
func NewResultCache(size int) (*ResultCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[CacheKey, []Ranked](size)
	if err != nil {
		return nil, err
	}
	return &ResultCache{lru: c}, nil
}

// Get returns a cached ranking.
func (c *ResultCache) Get(key CacheKey) ([]Ranked, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// Add stores a ranking, evicting the least recently used one when full.
func (c *ResultCache) Add(key CacheKey, ranked []Ranked) {
	if c == nil {
		return
	}
	c.lru.Add(key, ranked)
}

// Purge drops every entry; called when the catalog changes.
func (c *ResultCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Len returns the number of cached rankings.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
