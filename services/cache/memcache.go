package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService over memcached. Block windows are
// shared across worker instances, so a host that rate-limited one instance
// is left alone by all of them.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a memcached-backed cache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a value. A miss returns an error, which providers read as
// "no block window open".
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value with an expiration; memcached evicts it when the
// block window ends
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete clears a block window early
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}
