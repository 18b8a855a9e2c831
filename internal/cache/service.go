package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// KeyPrefix namespaces every cache entry so startup invalidation can
// scan-and-delete without touching foreign keys in a shared server.
const KeyPrefix = "cache:"

// Service memoizes read-heavy query results. It never fails the read
// path: store errors and malformed payloads are indistinguishable from
// misses, and writes are fire-and-forget.
type Service struct {
	store    Store
	log      *zap.Logger
	disabled bool
}

// NewService builds a cache service over the given store.
func NewService(store Store, log *zap.Logger, disabled bool) *Service {
	return &Service{
		store:    store,
		log:      log.Named("cache.service"),
		disabled: disabled,
	}
}

// BuildKey derives a deterministic cache key from an entity name and
// query parameters. Parameter pairs are sorted so insertion order does
// not change the key.
func BuildKey(entity string, params map[string]string) string {
	if len(params) == 0 {
		return KeyPrefix + entity + "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteString(entity)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// Get loads a cached value into out. A false return means not cached,
// whatever the underlying reason.
func (s *Service) Get(ctx context.Context, key string, out any) bool {
	if s == nil || s.disabled {
		return false
	}
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn("cache entry malformed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a value in the background. Errors are logged, never
// surfaced, and never block the caller.
func (s *Service) Set(key string, value any, ttl time.Duration) {
	if s == nil || s.disabled {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("cache serialize failed", zap.String("key", key), zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.SetEx(ctx, key, string(raw), ttl); err != nil {
			s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// Delete removes a single entry.
func (s *Service) Delete(ctx context.Context, key string) bool {
	if s == nil || s.disabled {
		return false
	}
	ok, err := s.store.Del(ctx, key)
	if err != nil {
		s.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// InvalidateAll drops every entry under the cache namespace. Called at
// process start so stale results never survive a deploy.
func (s *Service) InvalidateAll(ctx context.Context) (int, error) {
	if s == nil || s.disabled {
		return 0, nil
	}
	return s.store.InvalidatePrefix(ctx, KeyPrefix)
}
