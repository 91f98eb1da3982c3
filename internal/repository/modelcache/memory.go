package modelcache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zkaiera/last30days-skill/internal/db"
)

// DefaultMemorySize bounds the in-process cache. One entry per provider
// routing configuration, so this is generous.
const DefaultMemorySize = 128

// Memory is an in-process LRU cache, used when no persistent backend is
// configured and as the deterministic stand-in in tests.
type Memory struct {
	cache *lru.LRU[string, []byte]
}

// NewMemory creates an LRU cache. size <= 0 uses DefaultMemorySize; ttl <= 0 never expires.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Memory{cache: lru.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the cached value or db.ErrKeyNotFound.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

// Set stores a copy of value.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.cache.Add(key, append([]byte(nil), value...))
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	return m.cache.Len()
}
