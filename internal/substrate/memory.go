package substrate

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemorySubstrate keeps blobs in process memory. It is the default backend
// for development and tests. Entries never expire; history has no automatic
// expiry policy.
type MemorySubstrate struct {
	cache *cache.Cache
}

func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemorySubstrate) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *MemorySubstrate) Set(_ context.Context, key string, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemorySubstrate) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
