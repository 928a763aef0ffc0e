package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"creepycorners/internal/middleware"
	"creepycorners/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Cache is a nil-safe cache-aside helper over Redis. A Cache with no client
// always falls through to the source.
type Cache struct {
	client *redis.Client
}

// New wraps client, which may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Client returns the underlying Redis client or nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Enabled reports whether a Redis client is configured.
func (c *Cache) Enabled() bool {
	return c.Client() != nil
}

// Aside reads key into dest; on a miss it calls fetch, which must fill dest,
// and stores the result for ttl. Redis failures degrade to calling fetch.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)
	if !c.Enabled() {
		return fetch()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(family, "hit").Inc()
			return nil
		}
		c.Invalidate(ctx, key)
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	observability.CacheLookups.WithLabelValues(family, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	b, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes keys, ignoring errors.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// Generation returns the counter stored at key, 0 when absent or unavailable.
func (c *Cache) Generation(ctx context.Context, key string) int64 {
	if !c.Enabled() {
		return 0
	}
	n, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return n
}

// Bump increments the counter at key so pages keyed by the old value are never read again.
func (c *Cache) Bump(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	c.client.Incr(ctx, key)
}

// Mark stores a flag for ttl.
func (c *Cache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if !c.Enabled() {
		return errors.New("redis not configured")
	}
	return c.client.Set(ctx, key, "1", ttl).Err()
}

// Marked reports whether a flag set by Mark is present.
func (c *Cache) Marked(ctx context.Context, key string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
