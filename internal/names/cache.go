package names

import (
	"context"
	"sync"
)

// Cache stores display names keyed by hex public key. Implementations must
// be safe for concurrent use; concurrent writes to one key may land in any
// order.
type Cache interface {
	Get(ctx context.Context, pubkey string) (string, bool, error)
	Put(ctx context.Context, pubkey, name string) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{names: make(map[string]string)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, pubkey string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[pubkey]
	return name, ok, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, pubkey, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[pubkey] = name
	return nil
}
