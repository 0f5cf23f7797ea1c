package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values for the lifetime of the process
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-memory store. Entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Close is a no-op; the contents stay readable until the store is dropped.
func (s *MemoryStore) Close() error {
	return nil
}
