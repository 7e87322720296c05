package modelstore

import (
	"context"
	"sync"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
)

type cacheEntry struct {
	version string
	model   forecast.Model
}

// Cache memoizes loaded models per handle. When the store implements
// Versioner an entry is reused only while the record version is unchanged,
// so a retrained model is picked up on the next Load.
type Cache struct {
	mu      sync.RWMutex
	store   Store
	entries map[Handle]*cacheEntry
	hits    int
	misses  int
}

// NewCache wraps store
func NewCache(store Store) *Cache {
	return &Cache{
		store:   store,
		entries: make(map[Handle]*cacheEntry),
	}
}

// Load returns the cached model for h, reloading it when the version changed
func (c *Cache) Load(ctx context.Context, h Handle) (forecast.Model, error) {
	version := ""
	if v, ok := c.store.(Versioner); ok {
		var err error
		version, err = v.Version(ctx, h)
		if err != nil {
			c.Invalidate(h)
			return forecast.Model{}, err
		}
	}

	c.mu.RLock()
	entry, exists := c.entries[h]
	c.mu.RUnlock()
	if exists && entry.version == version {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.model, nil
	}

	m, err := c.store.Load(ctx, h)
	if err != nil {
		return forecast.Model{}, err
	}

	c.mu.Lock()
	c.misses++
	c.entries[h] = &cacheEntry{version: version, model: m}
	c.mu.Unlock()
	return m, nil
}

// Invalidate drops the entry for h
func (c *Cache) Invalidate(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, h)
}

// Clear removes all entries
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Handle]*cacheEntry)
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"entries": len(c.entries),
		"hits":    c.hits,
		"misses":  c.misses,
	}
}
