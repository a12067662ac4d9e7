package cache

import (
	"time"
)

// Cache defines the interface for caching operations. Entries older than the
// configured TTL are treated as absent and evicted lazily on access
type Cache interface {
	// Get retrieves an item from cache
	Get(key string) (interface{}, bool)

	// Set stores an item in cache
	Set(key string, value interface{})

	// Clear removes all items
	Clear()

	// Size returns the current cache size
	Size() int
}

// Config defines configuration options for cache implementations
type Config struct {
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		TTL: 5 * time.Minute,
	}
}
