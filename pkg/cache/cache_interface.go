package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. Implementations may be
// Redis, Memcached or in-memory; callers never see which.
type Cache interface {
	// Get reads a key and unmarshals it into dest.
	// Returns (found, error):
	// - found = true: cache hit, data unmarshaled into dest
	// - found = false: cache miss, dest untouched
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value under key with a TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether a key is present
	Exists(ctx context.Context, key string) (bool, error)

	// Expire resets a key's TTL
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping verifies the connection
	Ping(ctx context.Context) error
}
