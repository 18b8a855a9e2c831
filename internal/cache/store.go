package cache

import (
	"context"
	"time"
)

// Store is the raw key/value backend: redis in production, the in-memory
// store in tests and cache-less deployments. Values are opaque strings;
// the Service owns serialization.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) (bool, error)
	// InvalidatePrefix deletes every key sharing the prefix and returns
	// the number of keys removed.
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
}
