package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/bossanova/translate"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cache values in Redis, optionally with a TTL.
type RedisStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

// NewRedisStore returns a store over client. A zero ttl keeps values until
// they are overwritten.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{redis: client, ttl: ttl}
}

// Get returns the value of key, or translate.ErrCacheMiss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, translate.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.redis.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
