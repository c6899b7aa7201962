package cache

import (
	"testing"
	"time"

	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiresEntries(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	c := NewTTLCacheWithClock[string, int](clk)

	c.Set("a", 1, 5*time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clk.Advance(5 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheSweepDropsStaleEntries(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	c := NewTTLCacheWithClock[string, string](clk)

	c.Set("old", "x", time.Second)
	clk.Advance(2 * time.Minute)
	c.Set("new", "y", time.Minute)

	assert.Equal(t, 1, c.Len())
	c.mu.Lock()
	_, stale := c.items["old"]
	c.mu.Unlock()
	assert.False(t, stale)
}

func TestTTLCacheIgnoresNonPositiveTTL(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "1|919876543210", Key("1", " ", "919876543210"))
	assert.Equal(t, "abc", Key(" ABC "))
}

func TestTTLCacheTakeRemovesEntry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	c := NewTTLCacheWithClock[string, string](clk)

	c.Set("a", "one", time.Minute)
	c.Set("b", "two", time.Minute)

	v, ok := c.Take("a")
	assert.True(t, ok)
	assert.Equal(t, "one", v)
	_, ok = c.Take("a")
	assert.False(t, ok)

	clk.Advance(time.Minute)
	_, ok = c.Take("b")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
