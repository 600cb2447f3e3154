// cache.go provides the in-process fragment cache. This is the L1 cache: it
// sits in front of Valkey and the renderer so repeated previews of the same
// source (an editor re-sending unchanged text) cost one map lookup. Keys
// cover format and full source, so entries never need invalidation; the cache
// is bounded and evicts the oldest entry first.
package engine

import (
	"log/slog"
	"sync"
)

// DefaultL1Size is the number of fragments kept in memory when no size is
// configured.
const DefaultL1Size = 512

// fragmentCache is a concurrency-safe, size-bounded map of rendered results.
type fragmentCache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]Result
	order   []string // insertion order, oldest first
}

// newFragmentCache creates an empty cache holding at most max entries.
func newFragmentCache(max int) *fragmentCache {
	if max <= 0 {
		max = DefaultL1Size
	}
	return &fragmentCache{
		max:     max,
		entries: make(map[string]Result, max),
		order:   make([]string, 0, max),
	}
}

// get retrieves a result from cache.
func (c *fragmentCache) get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// put stores a result, evicting the oldest entry when full.
func (c *fragmentCache) put(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = r
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = r
	c.order = append(c.order, key)
}

// len returns the number of cached fragments.
func (c *fragmentCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// invalidateAll clears the entire cache.
func (c *fragmentCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Result, c.max)
	c.order = c.order[:0]
	slog.Debug("fragment cache cleared")
}
