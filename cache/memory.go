package cache

import (
	"context"
	"time"

	"github.com/MrEthical07/bossanova/translate"
	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryStore is a process-local store backed by go-cache. It is safe for
// concurrent use.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore returns an empty store. A zero ttl keeps values until they
// are overwritten.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{
		c: gocache.New(ttl, memoryCleanupInterval),
	}
}

// Get returns a copy of the value of key, or translate.ErrCacheMiss.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, translate.ErrCacheMiss
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, translate.ErrCacheMiss
	}
	return append([]byte(nil), b...), nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.c.Set(key, append([]byte(nil), value...), gocache.DefaultExpiration)
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}
