package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the cache with a redis server.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.SetEx(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, key string) (bool, error) {
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (s *RedisStore) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	var cursor uint64
	affected := 0
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return affected, err
		}
		if len(keys) > 0 {
			removed, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return affected, err
			}
			affected += int(removed)
		}
		cursor = next
		if cursor == 0 {
			return affected, nil
		}
	}
}
