package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dashkeeper/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// RolesKeyPrefix keys the cached role list of a user.
	RolesKeyPrefix = "roles:%s"
)

// RolesKey returns the cache key of username's roles.
func RolesKey(username string) string {
	return fmt.Sprintf(RolesKeyPrefix, username)
}

// Aside returns the cached value at key, or calls load, caches its result for ttl
// and returns it. A nil client or any Redis failure falls through to load.
func Aside[T any](ctx context.Context, c *redis.Client, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	if c != nil {
		raw, err := c.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, true, nil
			}
			observability.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
		case !errors.Is(err, redis.Nil):
			observability.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, false, err
	}

	if c != nil {
		if raw, err := json.Marshal(value); err == nil {
			if err := c.Set(ctx, key, raw, ttl).Err(); err != nil {
				observability.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
	}
	return value, false, nil
}

// Invalidate removes key from c.
func Invalidate(ctx context.Context, c *redis.Client, key string) {
	if c != nil {
		c.Del(ctx, key)
	}
}
