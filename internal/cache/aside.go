package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: return the cached value under key
// if present, otherwise run fill and store the result with the given TTL.
// dest must be a pointer; fill is expected to populate it. Cache failures are
// logged and never surfaced to the caller.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fill func() error) error {
	if client != nil {
		data, err := client.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(data, dest); jsonErr == nil {
				return nil
			}
			// Corrupt entry; drop it and fall through to fill.
			client.Del(ctx, key)
		} else if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
	}

	if err := fill(); err != nil {
		return err
	}

	if client != nil {
		data, err := json.Marshal(dest)
		if err == nil {
			if setErr := client.Set(ctx, key, data, ttl).Err(); setErr != nil {
				middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", setErr)
			}
		}
	}
	return nil
}
