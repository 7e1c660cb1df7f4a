package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ahse-server/internal/domain"
)

// memoryEntry holds a cached result with its expiry. The LRU handles
// capacity eviction; expiry is checked lazily on read.
type memoryEntry struct {
	result    *domain.SimulationResult
	expiresAt time.Time
}

// MemoryCache is an in-process LRU result cache.
type MemoryCache struct {
	entries *lru.Cache
	ttl     time.Duration
}

// NewMemoryCache creates an LRU cache holding up to size entries, each
// valid for ttl. A non-positive ttl disables expiry.
func NewMemoryCache(size int, ttl time.Duration) (*MemoryCache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, ttl: ttl}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.SimulationResult, bool) {
	value, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	entry := value.(memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.result, true
}

func (c *MemoryCache) Set(_ context.Context, key string, result *domain.SimulationResult) error {
	entry := memoryEntry{result: result}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}

// Len reports the number of resident entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
