package transport

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LocationCache fronts Directory with an LRU so the hot send path avoids a
// KV lookup for blocks whose ownership hasn't changed recently — the same
// caching idiom a rebalance driver uses in front of its target map.
type LocationCache struct {
	dir   *Directory
	cache *lru.Cache[string, string]
}

func NewLocationCache(dir *Directory, size int) (*LocationCache, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LocationCache{dir: dir, cache: c}, nil
}

// Resolve returns the owning processing element for blockKey, consulting
// the cache first and falling back to Directory on a miss.
func (lc *LocationCache) Resolve(blockKey string) (string, bool) {
	if pe, ok := lc.cache.Get(blockKey); ok {
		return pe, true
	}
	pe, ok := lc.dir.Lookup(blockKey)
	if ok {
		lc.cache.Add(blockKey, pe)
	}
	return pe, ok
}

// Invalidate drops a cached entry, called after Directory.Migrate.
func (lc *LocationCache) Invalidate(blockKey string) {
	lc.cache.Remove(blockKey)
}
