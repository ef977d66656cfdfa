// Package cache stores per-session values such as the product list. Entries
// are deleted when their session ends; Redis entries also carry a TTL so a
// crashed process leaves nothing behind for long.
package cache

import (
	"context"
	"sync"
)

// Cache is a byte-value store.
type Cache interface {
	// Get reports false when key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// SessionKey scopes key to one session.
func SessionKey(sessionID, key string) string {
	return "session:" + sessionID + ":" + key
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache creates a process-local Cache.
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memoryCache) Close() error { return nil }
