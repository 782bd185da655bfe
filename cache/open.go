package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/translate"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const pingTimeout = time.Second

// Open builds the store selected by cfg: none when caching is disabled, Redis
// when an address is set, process memory otherwise. The Redis ping is retried
// with exponential backoff until cfg.ConnectTimeout elapses. The returned
// close function releases the Redis connection and is never nil.
func Open(ctx context.Context, cfg bossanova.CacheConfig) (translate.CacheStore, func() error, error) {
	noop := func() error { return nil }

	if cfg.Disabled {
		return nil, noop, nil
	}
	if cfg.RedisAddr == "" {
		return NewMemoryStore(cfg.TTL), noop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = bossanova.DefaultConnectTimeout
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 100 * time.Millisecond
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = timeout / 4
	eb.MaxElapsedTime = timeout

	err := backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, min(pingTimeout, timeout))
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(eb, ctx))
	if err != nil {
		_ = client.Close()
		return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	log.WithField("addr", cfg.RedisAddr).Info("cache: redis connected")
	return NewRedisStore(client, cfg.TTL), client.Close, nil
}
