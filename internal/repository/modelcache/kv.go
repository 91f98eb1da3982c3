// Package modelcache stores model-resolution choices across runs.
//
// All backends share the same narrow contract: Get returns db.ErrKeyNotFound
// on a miss, Set overwrites. Values are raw model ids.
package modelcache

import (
	"context"
	"fmt"
	"time"
)

// kvStore is the consumer interface for the Redis/Valkey backend (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Set(ctx context.Context, key string, value []byte) error
}

// KV caches resolutions in a shared key-value store.
type KV struct {
	store kvStore
	ttl   time.Duration
}

// NewKV creates a store-backed cache. ttl <= 0 stores without expiry.
func NewKV(s kvStore, ttl time.Duration) *KV {
	return &KV{store: s, ttl: ttl}
}

// Get returns the cached value for key.
func (c *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("model cache get: %w", err)
	}
	return data, nil
}

// Set stores value at key.
func (c *KV) Set(ctx context.Context, key string, value []byte) error {
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, value, c.ttl)
	} else {
		err = c.store.Set(ctx, key, value)
	}
	if err != nil {
		return fmt.Errorf("model cache set: %w", err)
	}
	return nil
}
