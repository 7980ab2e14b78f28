package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a key/value store with per-key expiry. Values are opaque bytes.
// Implementations treat backend failures as misses and never return them.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result for ttl and returns it. Values that fail to decode are recomputed.
// A freshly computed value is returned in its decoded form so that hits and
// misses are indistinguishable to the caller.
func GetOrCompute[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if c != nil {
		if raw, ok := c.Get(ctx, key); ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	value, err := compute(ctx)
	if err != nil || c == nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	c.Set(ctx, key, raw, ttl)

	var decoded T
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return value, nil
	}
	return decoded, nil
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration) {}
func (Noop) Delete(context.Context, ...string)                  {}
