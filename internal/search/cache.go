package search

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/memex/internal/store"
)

// DefaultQueryCacheSize is the default number of query vectors to cache.
const DefaultQueryCacheSize = 256

// queryCache keeps recently vectorized queries. Entries are keyed by the model
// that produced them, so a vector from a replaced model is never served.
type queryCache struct {
	cache *lru.Cache[cacheKey, store.SparseVector]
}

type cacheKey struct {
	model *store.Model
	query string
}

func newQueryCache(size int) *queryCache {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	cache, _ := lru.New[cacheKey, store.SparseVector](size)
	return &queryCache{cache: cache}
}

// vector returns the cached vector for query under model, computing it with
// transform on a miss.
func (c *queryCache) vector(model *store.Model, query string, transform func(string) store.SparseVector) store.SparseVector {
	key := cacheKey{model: model, query: query}
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := transform(query)
	c.cache.Add(key, v)
	return v
}

// purge drops every entry; called when a new model is loaded to release the old one.
func (c *queryCache) purge() {
	c.cache.Purge()
}

func (c *queryCache) len() int {
	return c.cache.Len()
}
