package resolver

import (
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Sagun15/edfi-apis-sub000/internal/filter"
	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
	"github.com/Sagun15/edfi-apis-sub000/internal/model"
)

const (
	predicateCacheTTL       = 24 * time.Hour
	predicateCacheSweepFreq = time.Hour
)

type predicateCacheEntry struct {
	set       *filter.PredicateSet
	lastUsed  time.Time
	createdAt time.Time
}

// predicateCache memoizes parsed filters per resource and expression.
// Stored sets are never mutated after parsing.
type predicateCache struct {
	mu         sync.Mutex
	items      map[string]*predicateCacheEntry
	lastSweep  time.Time
	maxEntries int
}

var globalPredicateCache = newPredicateCache(1024)

func newPredicateCache(maxEntries int) *predicateCache {
	return &predicateCache{
		items:      make(map[string]*predicateCacheEntry),
		maxEntries: maxEntries,
	}
}

func (c *predicateCache) setMaxEntries(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxEntries = n
}

func (c *predicateCache) get(key string, now time.Time) (*filter.PredicateSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)
	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.lastUsed) > predicateCacheTTL {
		delete(c.items, key)
		return nil, false
	}
	entry.lastUsed = now
	return entry.set, true
}

func (c *predicateCache) set(key string, value *filter.PredicateSet, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)

	if _, ok := c.items[key]; !ok && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.items[key] = &predicateCacheEntry{
		set:       value,
		lastUsed:  now,
		createdAt: now,
	}
}

func (c *predicateCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *predicateCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.items {
		if oldestKey == "" || entry.lastUsed.Before(oldest) {
			oldestKey, oldest = key, entry.lastUsed
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
		logger.Debug("predicate_cache_evicted", map[string]any{
			"entries":     len(c.items),
			"max_entries": c.maxEntries,
		})
	}
}

func (c *predicateCache) maybeSweepLocked(now time.Time) {
	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) < predicateCacheSweepFreq {
		return
	}
	before := len(c.items)
	for key, entry := range c.items {
		if now.Sub(entry.lastUsed) > predicateCacheTTL {
			delete(c.items, key)
		}
	}
	if removed := before - len(c.items); removed > 0 {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		logger.Debug("predicate_cache_swept", map[string]any{
			"removed":    removed,
			"entries":    len(c.items),
			"heap_inuse": stats.HeapInuse,
		})
	}
	c.lastSweep = now
}

func predicateCacheKey(resource, expr string) string {
	return resource + "\x00" + expr
}

// parseFilter returns the predicate set for a raw filter expression, nil
// when the expression is empty. Rejected expressions are not cached.
func parseFilter(m *model.Model, expr string) (*filter.PredicateSet, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	now := time.Now()
	key := predicateCacheKey(m.Name, expr)
	if set, ok := globalPredicateCache.get(key, now); ok {
		return set, nil
	}
	set, err := m.ParseFilter(expr)
	if err != nil {
		return nil, err
	}
	globalPredicateCache.set(key, set, now)
	return set, nil
}
