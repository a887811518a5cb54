package research

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findyourn/reddit-listener/internal/types"
)

func newTestCache(ttl time.Duration) (*discoveryCache, *time.Time) {
	c := newDiscoveryCache(ttl)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheHit(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	want := &types.DiscoveryResult{Query: "electric cars"}
	c.put("electric cars", want)

	got, err := c.get("electric cars")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	_, err := c.get("never discovered")

	var miss *CacheMissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "never discovered", miss.Query)
}

func TestCacheExpiry(t *testing.T) {
	c, now := newTestCache(15 * time.Minute)
	c.put("electric cars", &types.DiscoveryResult{Query: "electric cars"})

	*now = now.Add(16 * time.Minute)

	_, err := c.get("electric cars")
	var expired *CacheExpiredError
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, 16*time.Minute, expired.Age)

	// The expired entry is evicted, so the next lookup is a plain miss.
	_, err = c.get("electric cars")
	var miss *CacheMissError
	assert.ErrorAs(t, err, &miss)
}

func TestCacheServesAtExactTTL(t *testing.T) {
	c, now := newTestCache(15 * time.Minute)
	c.put("q", &types.DiscoveryResult{})

	*now = now.Add(15 * time.Minute)

	_, err := c.get("q")
	assert.NoError(t, err, "age equal to the TTL is still fresh")
}

func TestCachePutOverwrites(t *testing.T) {
	c, now := newTestCache(15 * time.Minute)
	c.put("q", &types.DiscoveryResult{Query: "old"})

	*now = now.Add(10 * time.Minute)
	fresh := &types.DiscoveryResult{Query: "new"}
	c.put("q", fresh)

	*now = now.Add(10 * time.Minute)
	got, err := c.get("q")
	require.NoError(t, err, "overwrite must reset the entry's age")
	assert.Equal(t, "new", got.Query)
}

func TestCachePutSweepsExpiredEntries(t *testing.T) {
	c, now := newTestCache(15 * time.Minute)
	c.put("stale", &types.DiscoveryResult{})

	*now = now.Add(16 * time.Minute)
	c.put("fresh", &types.DiscoveryResult{})

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.entries, 1)
	_, ok := c.entries["fresh"]
	assert.True(t, ok)
}

func TestCacheQueriesAreNotNormalized(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.put("Electric Cars", &types.DiscoveryResult{})

	_, err := c.get("electric cars")
	var miss *CacheMissError
	assert.ErrorAs(t, err, &miss, "lookup is by the literal query string")
}
