package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryRowCache implements RowCache with a map. Suitable for single-instance deployments and tests.
type InMemoryRowCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    bool
	now       func() time.Time
}

// NewInMemoryRowCache creates the cache and starts a goroutine evicting expired entries every sweep.
func NewInMemoryRowCache(sweep time.Duration) *InMemoryRowCache {
	if sweep <= 0 {
		sweep = time.Minute
	}
	c := &InMemoryRowCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
	c.wg.Add(1)
	go c.cleanupLoop(sweep)
	return c
}

// Get returns a copy of the cached value
func (c *InMemoryRowCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false, ErrCacheClosed
	}
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores a copy of value for ttl. A non-positive ttl stores nothing.
func (c *InMemoryRowCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	c.entries[key] = entry{value: cp, expiresAt: c.now().Add(ttl)}
	return nil
}

// DeleteEntity drops every scope cached for entityID
func (c *InMemoryRowCache) DeleteEntity(ctx context.Context, entityID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if hasEntityPrefix(k, entityID) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryRowCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
		c.mu.Lock()
		c.closed = true
		c.entries = map[string]entry{}
		c.mu.Unlock()
	})
	return nil
}

func (c *InMemoryRowCache) cleanupLoop(sweep time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryRowCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of entries, expired or not
func (c *InMemoryRowCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ RowCache = (*InMemoryRowCache)(nil)
