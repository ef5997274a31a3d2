package search

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/denoland-id/denoid/pkg/provider"
)

// Cache memoizes filtered views per snapshot generation.
// A new generation never observes entries computed for an older one.
type Cache struct {
	entries  *lru.LRU[string, []provider.Module]
	onLookup func(hit bool)
}

// NewCache creates a cache holding at most size filtered views for ttl
func NewCache(size int, ttl time.Duration) *Cache {
	if size < 1 {
		size = 1
	}
	return &Cache{
		entries: lru.NewLRU[string, []provider.Module](size, nil, ttl),
	}
}

// OnLookup registers a hook called with the outcome of every lookup
func (c *Cache) OnLookup(fn func(hit bool)) {
	c.onLookup = fn
}

// Filter returns Filter(modules, query), reusing a previous result for the
// same generation and normalized query.
func (c *Cache) Filter(generation uint64, modules []provider.Module, query string) []provider.Module {
	needle := Normalize(query)
	if needle == "" {
		return Filter(modules, "")
	}

	key := fmt.Sprintf("%d\x00%s", generation, needle)
	if cached, ok := c.entries.Get(key); ok {
		c.record(true)
		return cached
	}
	c.record(false)

	result := Filter(modules, needle)
	c.entries.Add(key, result)
	return result
}

// Len returns the number of cached views
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached view
func (c *Cache) Purge() {
	c.entries.Purge()
}

func (c *Cache) record(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}
