package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/vyapar/internal/clock"
)

var errEmptyKey = errors.New("cooldown key is empty")

// Cooldown grants at most one action per key within a ttl window.
type Cooldown interface {
	// Acquire starts a window for key when none is open. When a window is
	// open it reports false and the time left before the key frees up.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error)
}

// RedisCooldown shares windows across processes.
type RedisCooldown struct {
	client *redis.Client
	prefix string
}

func NewRedisCooldown(client *redis.Client, prefix string) *RedisCooldown {
	return &RedisCooldown{client: client, prefix: prefix}
}

func (c *RedisCooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	if key == "" {
		return false, 0, errEmptyKey
	}
	if ttl <= 0 {
		return true, 0, nil
	}

	fullKey := c.prefix + key
	ok, err := c.client.SetNX(ctx, fullKey, uuid.NewString(), ttl).Result()
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}

	remaining, err := c.client.PTTL(ctx, fullKey).Result()
	if err != nil {
		return false, 0, err
	}
	if remaining < 0 {
		remaining = 0
	}
	return false, remaining, nil
}

// MemoryCooldown keeps windows in process memory.
type MemoryCooldown struct {
	mu      sync.Mutex
	clock   clock.Clock
	expires map[string]time.Time
}

func NewMemoryCooldown(clk clock.Clock) *MemoryCooldown {
	return &MemoryCooldown{clock: clk, expires: make(map[string]time.Time)}
}

func (c *MemoryCooldown) Acquire(_ context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	if key == "" {
		return false, 0, errEmptyKey
	}
	if ttl <= 0 {
		return true, 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if until, ok := c.expires[key]; ok && now.Before(until) {
		return false, until.Sub(now), nil
	}
	c.expires[key] = now.Add(ttl)

	if len(c.expires) > 1024 {
		for k, until := range c.expires {
			if !now.Before(until) {
				delete(c.expires, k)
			}
		}
	}
	return true, 0, nil
}
