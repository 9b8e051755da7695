package cache

import (
	"sync"
)

// ShapeCache memoises display text by source text. Localization files
// repeat the same values across many keys and files, and shaping is pure,
// so one cache is shared by every job of a run.
type ShapeCache struct {
	mu     sync.RWMutex
	memory map[string]string
	hits   int
	misses int
}

// NewShapeCache creates an empty cache.
func NewShapeCache() *ShapeCache {
	return &ShapeCache{
		memory: make(map[string]string),
	}
}

// Get retrieves a cached result. Returns empty string and false if not found.
func (c *ShapeCache) Get(source string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.memory[source]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores a result.
func (c *ShapeCache) Set(source, display string) {
	c.mu.Lock()
	c.memory[source] = display
	c.mu.Unlock()
}

// GetOrCompute returns the cached result for source, computing and storing
// it with fn on a miss.
func (c *ShapeCache) GetOrCompute(source string, fn func(string) string) string {
	if v, ok := c.Get(source); ok {
		return v
	}
	v := fn(source)
	c.Set(source, v)
	return v
}

// Stats returns the number of hits and misses so far.
func (c *ShapeCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *ShapeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
