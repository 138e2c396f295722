package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/store-audit/pkg/cache"
)

// TrackingCache is an in-process Cacher that records invalidations. Values
// are stored as JSON so hits decode like the Redis cache.
type TrackingCache struct {
	mu          sync.Mutex
	data        map[string]cacheEntry
	generations map[string]int64
	invalidated []string
}

type cacheEntry struct {
	value  []byte
	expiry time.Time
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{
		data:        make(map[string]cacheEntry),
		generations: make(map[string]int64),
	}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok || (!entry.expiry.IsZero() && time.Now().After(entry.expiry)) {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(entry.value, dest)
}

func (c *TrackingCache) Generation(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key], nil
}

func (c *TrackingCache) SetIfGeneration(ctx context.Context, key string, gen int64, value any, exp time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		return false, nil
	}
	entry := cacheEntry{value: data}
	if exp > 0 {
		entry.expiry = time.Now().Add(exp)
	}
	c.data[key] = entry
	return true, nil
}

func (c *TrackingCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.generations[k]++
		delete(c.data, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}

func (c *TrackingCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *TrackingCache) Invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}
