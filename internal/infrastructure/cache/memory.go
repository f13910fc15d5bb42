package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/platelens/backend/internal/domain"
)

const cleanupInterval = 10 * time.Minute

// cacheItem is one cached lookup. A nil Payload records a miss.
type cacheItem struct {
	Payload    []byte
	Expiration time.Time
}

// ProductCache is a thread-safe in-memory cache of composition lookups with
// separate TTLs for hits and misses.
type ProductCache struct {
	data        map[string]cacheItem
	mutex       sync.RWMutex
	ttl         time.Duration
	negativeTTL time.Duration
	now         func() time.Time
	done        chan struct{}
	closeOnce   sync.Once
}

// NewProductCache creates a cache and starts its cleanup goroutine.
// Call Close to stop it.
func NewProductCache(ttl, negativeTTL time.Duration) *ProductCache {
	cache := &ProductCache{
		data:        make(map[string]cacheItem),
		ttl:         ttl,
		negativeTTL: negativeTTL,
		now:         time.Now,
		done:        make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get returns the cached product, ErrProductNotFound for a cached miss, or
// ErrCacheMiss when nothing usable is stored.
func (c *ProductCache) Get(ctx context.Context, key string) (*domain.CompositionProduct, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || c.now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}
	if item.Payload == nil {
		return nil, domain.ErrProductNotFound
	}

	// Decode a fresh copy so callers cannot mutate the cached value
	var product domain.CompositionProduct
	if err := json.Unmarshal(item.Payload, &product); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &product, nil
}

// Set stores a product under key for the positive TTL
func (c *ProductCache) Set(ctx context.Context, key string, product *domain.CompositionProduct) error {
	if product == nil {
		return c.SetNotFound(ctx, key)
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	c.store(key, payload, c.ttl)
	return nil
}

// SetNotFound records that key resolved to nothing, for the negative TTL
func (c *ProductCache) SetNotFound(ctx context.Context, key string) error {
	c.store(key, nil, c.negativeTTL)
	return nil
}

func (c *ProductCache) store(key string, payload []byte, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data[key] = cacheItem{
		Payload:    payload,
		Expiration: c.now().Add(ttl),
	}
}

// Delete removes a key from the cache
func (c *ProductCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Size returns the current number of items, expired ones included
func (c *ProductCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *ProductCache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *ProductCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *ProductCache) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	now := c.now()
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
		}
	}
}
