package cache

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired items are swept
const DefaultCleanupInterval = time.Minute

// Item represents a cached item with expiration
type Item[V any] struct {
	Value      V
	Expiration int64
	ttl        time.Duration
}

// Cache is a thread-safe in-memory TTL store
type Cache[V any] struct {
	items   map[string]Item[V]
	mu      sync.RWMutex
	ttl     time.Duration
	onEvict func(key string, value V)
	stop    chan struct{}
	once    sync.Once
}

// New creates a new cache with the specified default TTL
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithCleanup[V](ttl, DefaultCleanupInterval)
}

// NewWithCleanup creates a cache whose expired items are swept every interval
func NewWithCleanup[V any](ttl, interval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]Item[V]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}

	go c.cleanup(interval)

	return c
}

// OnEvict registers fn to run for every item that expires or is flushed.
// fn runs without the cache lock held.
func (c *Cache[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item[V]{
		Value:      value,
		Expiration: time.Now().Add(ttl).UnixNano(),
		ttl:        ttl,
	}
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	item, found := c.items[key]
	if !found {
		return zero, false
	}

	if time.Now().UnixNano() > item.Expiration {
		return zero, false
	}

	return item.Value, true
}

// Touch extends a live item by its own TTL. It reports whether the item
// was found.
func (c *Cache[V]) Touch(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	now := time.Now()
	if !found || now.UnixNano() > item.Expiration {
		return false
	}
	item.Expiration = now.Add(item.ttl).UnixNano()
	c.items[key] = item
	return true
}

// GetOrSet retrieves a value from cache or sets it using the provided function
func (c *Cache[V]) GetOrSet(key string, fn func() (V, error)) (V, error) {
	if value, found := c.Get(key); found {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, value)
	return value, nil
}

// Delete removes a value from the cache and returns it. The eviction
// callback does not run.
func (c *Cache[V]) Delete(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	delete(c.items, key)
	return item.Value, found
}

// Len counts stored items, expired or not
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Flush removes all items, running the eviction callback for each
func (c *Cache[V]) Flush() {
	c.mu.Lock()
	items := c.items
	c.items = make(map[string]Item[V])
	fn := c.onEvict
	c.mu.Unlock()

	if fn == nil {
		return
	}
	for key, item := range items {
		fn(key, item.Value)
	}
}

// Close stops the cleanup loop. The cache stays usable.
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup removes expired items periodically
func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.DeleteExpired()
		}
	}
}

// DeleteExpired sweeps expired items now
func (c *Cache[V]) DeleteExpired() {
	c.mu.Lock()
	now := time.Now().UnixNano()
	expired := make(map[string]V)
	for key, item := range c.items {
		if now > item.Expiration {
			expired[key] = item.Value
			delete(c.items, key)
		}
	}
	fn := c.onEvict
	c.mu.Unlock()

	if fn == nil {
		return
	}
	for key, value := range expired {
		fn(key, value)
	}
}
