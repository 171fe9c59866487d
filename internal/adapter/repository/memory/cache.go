// Package memory provides in-process adapters used when Redis is not configured.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iho/walletledger/internal/usecase"
)

// Cache implements usecase.Cache on top of go-cache.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates a cache whose entries default to ttl and are swept every cleanup interval.
func NewCache(ttl, cleanup time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanup)}
}

// Get returns the value for key or usecase.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", usecase.ErrCacheMiss
	}

	s, ok := v.(string)
	if !ok {
		return "", usecase.ErrCacheMiss
	}

	return s, nil
}

// Set stores value under key. A zero ttl uses the cache default.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Len returns the number of cached items, expired ones included until swept.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
