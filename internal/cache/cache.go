package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Keys shared by the services that cache read-mostly data.
const (
	KeyCategories = "market:categories"
	KeySettings   = "market:settings"
)

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	// Get decodes the value stored under key into dest. The bool reports a hit.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Noop never stores anything. It is used when no cache is configured.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error               { return nil }

// Load returns the cached value for key, or calls load and caches its result.
// Cache errors are logged and treated as a miss so they never fail the caller.
func Load[T any](ctx context.Context, c Cache, log zerolog.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var v T
	hit, err := c.Get(ctx, key, &v)
	if err != nil {
		log.Warn().Err(err).Str("event", "cache_get_failed").Str("key", key).Msg("cache read failed")
	}
	if hit && err == nil {
		return v, nil
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		log.Warn().Err(err).Str("event", "cache_set_failed").Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

// Invalidate deletes keys and logs failures.
func Invalidate(ctx context.Context, c Cache, log zerolog.Logger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Str("event", "cache_delete_failed").Strs("keys", keys).Msg("cache invalidation failed")
	}
}
