package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/accounts/pkg/domain/account"
)

// MemoryCache implements AccountCache using in-memory storage
type MemoryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	account   account.Account
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries every interval.
func NewMemoryCache(interval time.Duration) *MemoryCache {
	c := &MemoryCache{
		cache: make(map[string]*cacheEntry),
		stop:  make(chan struct{}),
	}
	if interval > 0 {
		go c.cleanup(interval)
	}
	return c
}

// Get retrieves an account from cache
func (c *MemoryCache) Get(_ context.Context, number string) (*account.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[number]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	a := entry.account
	return &a, nil
}

// Set stores a copy of the account with TTL
func (c *MemoryCache) Set(_ context.Context, a *account.Account, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[a.Number] = &cacheEntry{
		account:   *a,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes an account from cache
func (c *MemoryCache) Delete(_ context.Context, number string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, number)
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep(time.Now())
		}
	}
}

func (c *MemoryCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}
