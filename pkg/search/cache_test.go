package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/denoland-id/denoid/pkg/provider"
)

func TestCache_Filter(t *testing.T) {
	modules := []provider.Module{
		{Name: "oak", Desc: "middleware"},
		{Name: "denon", Desc: "runner"},
	}

	var hits, misses int
	cache := NewCache(8, time.Minute)
	cache.OnLookup(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	first := cache.Filter(1, modules, "oak")
	second := cache.Filter(1, modules, "  OAK ")

	assert.Equal(t, []provider.Module{{Name: "oak", Desc: "middleware"}}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_GenerationIsolation(t *testing.T) {
	cache := NewCache(8, time.Minute)

	old := []provider.Module{{Name: "oak", Desc: "v1"}}
	fresh := []provider.Module{{Name: "oak", Desc: "v2"}, {Name: "oakland", Desc: "new"}}

	assert.Len(t, cache.Filter(1, old, "oak"), 1)
	assert.Len(t, cache.Filter(2, fresh, "oak"), 2)
}

func TestCache_EmptyQueryBypassesCache(t *testing.T) {
	cache := NewCache(8, time.Minute)
	modules := []provider.Module{{Name: "oak"}}

	assert.Equal(t, modules, cache.Filter(1, modules, ""))
	assert.Equal(t, 0, cache.Len())
}

func TestCache_Purge(t *testing.T) {
	cache := NewCache(0, time.Minute)
	cache.Filter(1, []provider.Module{{Name: "oak"}}, "oak")
	cache.Filter(1, []provider.Module{{Name: "oak"}}, "o")
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}
