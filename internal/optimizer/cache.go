package optimizer

import (
	"sync"
	"time"

	"github.com/jonathan/cv-match-engine/internal/types"
)

// CacheStats reports the cache's hit/miss counters and live entry count.
type CacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Size   int `json:"size"`
}

type cacheEntry struct {
	score     *types.OptimizedMatchScore
	createdAt time.Time
}

// resultCache is the process-wide TTL cache for optimized match scores.
// A generation counter makes Clear atomic relative to in-flight
// computations: a store is dropped when a clear happened after the
// computation registered.
type resultCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	hits       int
	misses     int
	generation uint64
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// get returns a live entry for the key, counting a hit or miss. Expired
// entries are evicted and fall through to recomputation as a miss.
func (c *resultCache) get(key string) (*types.OptimizedMatchScore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok && time.Since(entry.createdAt) < c.ttl {
		c.hits++
		return entry.score, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.misses++
	return nil, false
}

// currentGeneration snapshots the generation before a computation starts.
func (c *resultCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// setIfGeneration stores the score under the key unless the cache was
// cleared since the computation snapshotted the generation.
func (c *resultCache) setIfGeneration(key string, score *types.OptimizedMatchScore, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return false
	}
	c.entries[key] = cacheEntry{score: score, createdAt: time.Now()}
	return true
}

// clear evicts all entries unconditionally and invalidates any in-flight
// registration by bumping the generation.
func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.generation++
}

// stats returns a snapshot of the counters, excluding expired entries
// from the live size.
func (c *resultCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := 0
	for _, entry := range c.entries {
		if time.Since(entry.createdAt) < c.ttl {
			size++
		}
	}
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: size}
}
