package cache

import (
	"context"
	"encoding/json"
	"time"
)

// LayeredCache keeps a bounded in-process L1 in front of Redis. Reads fall
// through to Redis and backfill L1. Locks always go to Redis so that every
// replica sees them.
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
	l1Size     int
	l1TTL      time.Duration
}

// NewLayeredCache puts an L1 of at most 5000 entries, each kept for at most
// ten minutes unless configured otherwise, in front of redisCache.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	lc := &LayeredCache{
		redisCache: redisCache,
		l1Size:     5000,
		l1TTL:      10 * time.Minute,
	}
	for _, opt := range opts {
		opt(lc)
	}
	lc.memCache = NewMemoryCache(WithMemoryMaxSize(lc.l1Size), WithMemoryCleanup(lc.l1TTL))
	return lc
}

// l1Expiry caps the L1 lifetime so entries never outlive their Redis copy.
func (lc *LayeredCache) l1Expiry(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.l1TTL {
		return expiration
	}
	return lc.l1TTL
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := lc.redisCache.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, lc.l1Expiry(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.redisCache.Get(ctx, key, dest); err != nil {
		return err
	}
	// L1 keeps its own copy; dest belongs to the caller.
	if s, ok := dest.(*string); ok {
		_ = lc.memCache.Set(ctx, key, *s, lc.l1TTL)
	} else if b, err := json.Marshal(dest); err == nil {
		_ = lc.memCache.Set(ctx, key, string(b), lc.l1TTL)
	}
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.memCache.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.redisCache.Exists(ctx, keys...)
}

func (lc *LayeredCache) MSet(ctx context.Context, values map[string]any, expiration time.Duration) error {
	if err := lc.redisCache.MSet(ctx, values, expiration); err != nil {
		return err
	}
	_ = lc.memCache.MSet(ctx, values, lc.l1Expiry(expiration))
	return nil
}

// MGet serves what it can from L1 and asks Redis only for the rest.
func (lc *LayeredCache) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	out, _ := lc.memCache.MGet(ctx, keys...)

	missing := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := out[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	remote, err := lc.redisCache.MGet(ctx, missing...)
	if err != nil {
		return nil, err
	}
	backfill := make(map[string]any, len(remote))
	for k, v := range remote {
		out[k] = v
		backfill[k] = v
	}
	_ = lc.memCache.MSet(ctx, backfill, lc.l1TTL)
	return out, nil
}

func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.redisCache.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.redisCache.Unlock(ctx, key)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.redisCache.Close()
}
