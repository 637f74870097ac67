package cache

import (
	"context"
	"time"
)

// MatrixCache is a thin, domain-agnostic read-through/write-through wrapper
// around Cache for matrix query results. It deliberately stores and returns
// opaque payloads (callers marshal/unmarshal their own engine.Response
// representation) so this package has no dependency on the matrix engine's
// internal types.
type MatrixCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewMatrixCache creates a cache for matrix query results.
func NewMatrixCache(cache Cache, defaultTTL time.Duration) *MatrixCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &MatrixCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get looks up a previously-cached response payload for the given request
// key. The bool return distinguishes "not present" from "present but empty".
func (mc *MatrixCache) Get(ctx context.Context, key MatrixRequestKey) ([]byte, bool, error) {
	cacheKey := BuildMatrixKey(MatrixHash(key))

	data, err := mc.cache.Get(ctx, cacheKey)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	return data, true, nil
}

// Set stores a response payload under the given request key. ttl <= 0 uses
// the cache's default TTL.
func (mc *MatrixCache) Set(ctx context.Context, key MatrixRequestKey, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}
	cacheKey := BuildMatrixKey(MatrixHash(key))
	return mc.cache.Set(ctx, cacheKey, payload, ttl)
}

// Invalidate removes the cached entry for the given request key.
func (mc *MatrixCache) Invalidate(ctx context.Context, key MatrixRequestKey) error {
	cacheKey := BuildMatrixKey(MatrixHash(key))
	return mc.cache.Delete(ctx, cacheKey)
}

// InvalidateAll removes every cached matrix result.
func (mc *MatrixCache) InvalidateAll(ctx context.Context) (int64, error) {
	return mc.cache.DeleteByPattern(ctx, "matrix:*")
}
