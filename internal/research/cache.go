package research

import (
	"sync"
	"time"

	"github.com/findyourn/reddit-listener/internal/types"
)

// DefaultCacheTTL is how long a discovery result may be served before a
// fresh run is required.
const DefaultCacheTTL = 15 * time.Minute

type cacheEntry struct {
	result    *types.DiscoveryResult
	createdAt time.Time
}

// discoveryCache maps the literal query string (not normalized) to its most
// recent discovery result. Entries older than the TTL are never served;
// eviction is lazy (on lookup) plus a sweep on every insert. There is no
// background timer.
type discoveryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	now func() time.Time // injectable for tests
}

func newDiscoveryCache(ttl time.Duration) *discoveryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &discoveryCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// put overwrites any existing entry for the query and sweeps expired
// entries as a side effect.
func (c *discoveryCache) put(query string, result *types.DiscoveryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[query] = cacheEntry{result: result, createdAt: now}

	for q, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, q)
		}
	}
}

// get returns the cached result for the query. A missing entry yields
// CacheMissError; an entry past the TTL is evicted and yields
// CacheExpiredError.
func (c *discoveryCache) get(query string) (*types.DiscoveryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[query]
	if !ok {
		return nil, &CacheMissError{Query: query}
	}

	age := c.now().Sub(entry.createdAt)
	if age > c.ttl {
		delete(c.entries, query)
		return nil, &CacheExpiredError{Query: query, Age: age}
	}
	return entry.result, nil
}
