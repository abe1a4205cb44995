// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Key-value byte store shared by every driver. The stores use it to keep
// their JSON snapshots, so values are opaque bytes and serialization stays
// with the caller.
//
// Drivers: Memory, File, Redis
//
// Features:
// - Get/Set/Delete operations
// - TTL (Time To Live) support
// - Flush (clear all)
// -----------------------------------------------------------------------------

package cache

import (
	"fmt"
	"log"
	"time"
)

// Cache is implemented by every cache driver.
//
// Example:
//
//	var c Cache = NewRedisCache(redisClient, logger, "doujindesk:")
//	c.Set("doujindesk-ticket-store", snapshot, 0)
type Cache interface {
	// Get reads a value.
	//
	// A missing or expired key returns nil, nil.
	//
	// Example:
	//   value, err := cache.Get("financial-store")
	//   if value == nil {
	//       // Cache miss
	//   }
	Get(key string) ([]byte, error)

	// Set writes a value. A ttl of 0 keeps it forever.
	Set(key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(key string) error

	// Has reports whether key holds a live value.
	Has(key string) (bool, error)

	// Flush removes every key owned by the driver.
	//
	// WARNING: this cannot be undone.
	Flush() error
}

// Stats is optionally implemented by drivers for monitoring.
//
// Example:
//
//	if s, ok := c.(Stats); ok {
//	    log.Printf("Cache stats: %+v", s.Stats())
//	}
type Stats interface {
	Stats() map[string]interface{}
}

// Driver names accepted by New.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Options configures New.
type Options struct {
	Driver string
	Dir    string
	Prefix string
	Redis  RedisClient
}

// New builds the driver named by opts.Driver.
func New(opts Options, logger *log.Logger) (Cache, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryCache(logger), nil
	case DriverFile:
		return NewFileCache(opts.Dir, logger)
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis cache driver requires a redis client")
		}
		return NewRedisCache(opts.Redis, logger, opts.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", opts.Driver)
	}
}
