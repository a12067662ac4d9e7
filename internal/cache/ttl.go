package cache

import (
	"sync"
	"time"
)

// entry is a stored value with its insertion timestamp
type entry struct {
	value    interface{}
	storedAt time.Time
}

// TTLCache implements the Cache interface with a single shared map and lazy
// eviction: expired entries are removed when Get touches them, never by a
// background sweeper. Concurrent writers to the same key race last-write-wins,
// which is fine because entries are idempotent recomputations
type TTLCache struct {
	config Config
	items  map[string]entry
	mu     sync.RWMutex

	// now is swappable so tests can control expiry
	now func() time.Time
}

// NewTTLCache creates a new TTL cache with the given configuration
func NewTTLCache(config Config) *TTLCache {
	return &TTLCache{
		config: config,
		items:  make(map[string]entry),
		now:    time.Now,
	}
}

// NewTTLCacheWithDefaults creates a new TTL cache with default configuration
func NewTTLCacheWithDefaults() *TTLCache {
	return NewTTLCache(DefaultConfig())
}

// Get retrieves an item from cache, evicting it if it has expired
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if c.config.TTL > 0 && c.now().Sub(e.storedAt) > c.config.TTL {
		delete(c.items, key)
		return nil, false
	}

	return e.value, true
}

// Set stores an item in cache, stamping it with the current time
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: value, storedAt: c.now()}
}

// Clear wipes all entries. Intended for manual cache-busting via the
// force-refresh flag, not normal operation
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry)
}

// Size returns the current cache size, counting expired-but-unevicted entries
func (c *TTLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
