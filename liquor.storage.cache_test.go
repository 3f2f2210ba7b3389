package liquor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a settable time source for cache tests
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(ttl time.Duration, maxEntries int) (*templateCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := newTemplateCache(CacheConfig{TTL: ttl, MaxEntries: maxEntries})
	cache.now = clock.Now
	return cache, clock
}

func TestNewTemplateCache_Defaults(t *testing.T) {
	cache := newTemplateCache(CacheConfig{})
	assert.Equal(t, DefaultCacheTTL, cache.config.TTL)
	assert.Equal(t, DefaultCacheMaxEntries, cache.config.MaxEntries)
	assert.Equal(t, DefaultCacheConfig(), cache.config)
}

func TestTemplateCache_GetPut(t *testing.T) {
	cache, clock := newTestCache(time.Minute, 10)
	tmpl := &Template{name: "a"}

	_, ok := cache.get("a")
	assert.False(t, ok)

	assert.Empty(t, cache.put("a", tmpl))
	got, ok := cache.get("a")
	assert.True(t, ok)
	assert.Same(t, tmpl, got)

	clock.Advance(59 * time.Second)
	_, ok = cache.get("a")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.get("a")
	assert.False(t, ok, "entry expires once its age reaches the TTL")

	stats := cache.stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestTemplateCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, clock := newTestCache(time.Hour, 2)

	cache.put("a", &Template{name: "a"})
	clock.Advance(time.Second)
	cache.put("b", &Template{name: "b"})
	clock.Advance(time.Second)

	_, ok := cache.get("a")
	assert.True(t, ok)
	clock.Advance(time.Second)

	assert.Equal(t, "b", cache.put("c", &Template{name: "c"}))
	_, ok = cache.get("b")
	assert.False(t, ok)

	assert.Empty(t, cache.put("c", &Template{name: "c"}), "replacing an entry evicts nothing")
	assert.Equal(t, 2, cache.stats().Entries)
}

func TestTemplateCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(time.Hour, 10)
	cache.put("a", &Template{})
	cache.put("b", &Template{})

	cache.invalidate("a")
	_, ok := cache.get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.stats().Entries)

	cache.invalidateAll()
	assert.Equal(t, 0, cache.stats().Entries)
}
