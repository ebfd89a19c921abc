package storage

import (
	"fmt"
	"sync"
)

// Cache stores recognized text keyed by a content hash.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, value string) error
	Clear() error
	Close() error
}

const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
)

// NewCache opens the cache backend by name. An empty backend selects memory.
func NewCache(backend, dataDir string) (Cache, error) {
	switch backend {
	case "", CacheBackendMemory:
		return NewMemoryCache(), nil
	case CacheBackendSQLite:
		return NewSQLiteCache(dataDir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// MemoryCache is a process-local Cache safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryCache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	return nil
}
