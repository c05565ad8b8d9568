package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultOpTimeout    = 250 * time.Millisecond
	defaultTombstoneTTL = 5 * time.Second

	// tombstone marks an evicted key. It is never valid JSON, so it cannot
	// collide with a cached view.
	tombstone = "\x00evicted"
)

// Cache is a string key-value cache backed by Redis. Every call is bounded by
// opTimeout. Entries expire after ttl; a zero ttl keeps them until evicted.
// Evictions leave a tombstone for tombstoneTTL.
type Cache struct {
	client       redis.Cmdable
	ttl          time.Duration
	opTimeout    time.Duration
	tombstoneTTL time.Duration
}

// NewCache wraps client. A non-positive opTimeout falls back to defaultOpTimeout.
func NewCache(client redis.Cmdable, ttl, opTimeout time.Duration) *Cache {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{client: client, ttl: ttl, opTimeout: opTimeout, tombstoneTTL: defaultTombstoneTTL}
}

// Get returns the value stored at key. A missing or tombstoned key is reported
// as ok=false with a nil error.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if v == tombstone {
		return "", false, nil
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Add is SET NX: the value is written only if key is absent. An unexpired
// tombstone occupies the key, so the write is refused.
func (c *Cache) Add(ctx context.Context, key, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	stored, err := c.client.SetNX(ctx, key, value, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache add %s: %w", key, err)
	}
	return stored, nil
}

// Delete replaces key with a tombstone that expires after tombstoneTTL.
// Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, tombstone, c.tombstoneTTL).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the server answers within the op timeout.
func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.client.Ping(ctx).Err()
}
