package liquor

import (
	"sync"
	"time"
)

// CacheConfig configures caching of templates compiled from a store.
type CacheConfig struct {
	// TTL is how long a compiled template is reused before the store is
	// consulted again.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached templates.
	// When exceeded, the least recently used entry is evicted.
	// Default: 1000.
	MaxEntries int
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        DefaultCacheTTL,
		MaxEntries: DefaultCacheMaxEntries,
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// templateCache holds compiled templates by name.
type templateCache struct {
	mu      sync.Mutex
	config  CacheConfig
	entries map[string]*cacheEntry
	hits    int64
	misses  int64
	now     func() time.Time
}

// cacheEntry is one compiled template.
type cacheEntry struct {
	template   *Template
	cachedAt   time.Time
	accessedAt time.Time
}

func newTemplateCache(config CacheConfig) *templateCache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	return &templateCache{
		config:  config,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// get returns a live entry and refreshes its access time.
func (c *templateCache) get(name string) (*Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[name]
	now := c.now()
	if !ok || now.Sub(entry.cachedAt) >= c.config.TTL {
		if ok {
			delete(c.entries, name)
		}
		c.misses++
		return nil, false
	}
	entry.accessedAt = now
	c.hits++
	return entry.template, true
}

// put stores tmpl and returns the name evicted to make room, if any.
func (c *templateCache) put(name string, tmpl *Template) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := ""
	if _, exists := c.entries[name]; !exists && len(c.entries) >= c.config.MaxEntries {
		evicted = c.evictOldest()
	}

	now := c.now()
	c.entries[name] = &cacheEntry{
		template:   tmpl,
		cachedAt:   now,
		accessedAt: now,
	}
	return evicted
}

func (c *templateCache) invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

func (c *templateCache) invalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

func (c *templateCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// evictOldest removes the least recently accessed entry.
// Caller must hold the lock.
func (c *templateCache) evictOldest() string {
	var (
		oldestName string
		oldest     *cacheEntry
	)
	for name, entry := range c.entries {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldestName, oldest = name, entry
		}
	}
	if oldest != nil {
		delete(c.entries, oldestName)
	}
	return oldestName
}
