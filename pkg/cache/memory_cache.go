// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// In-memory cache implementation (non-persistent).
//
// Used for tests and development, and as the default store driver when
// snapshots do not need to survive a restart.
//
// Features:
// - Thread-safe (sync.RWMutex)
// - TTL support (expired entries are ignored and swept on Set)
//
// Limitations:
// - Non-persistent (lost on restart)
// - Single process only
// -----------------------------------------------------------------------------

package cache

import (
	"log"
	"sync"
	"time"
)

// MemoryCacheEntry is one stored value.
type MemoryCacheEntry struct {
	Value     []byte
	ExpiresAt time.Time // zero value = no expiry
}

// IsExpired reports whether the entry has expired at now.
func (e *MemoryCacheEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.ExpiresAt)
}

// MemoryCache is the in-memory cache implementation.
type MemoryCache struct {
	store  map[string]*MemoryCacheEntry
	mu     sync.RWMutex
	logger *log.Logger
	now    func() time.Time
}

// NewMemoryCache creates a memory cache.
//
// Example:
//
//	c := NewMemoryCache(logger)
//	c.Set("doujindesk-staff-store", data, 0)
func NewMemoryCache(logger *log.Logger) *MemoryCache {
	logger.Println("✅ Memory cache started")

	return &MemoryCache{
		store:  make(map[string]*MemoryCacheEntry),
		logger: logger,
		now:    time.Now,
	}
}

// Get reads a value. The returned slice is a copy.
func (m *MemoryCache) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.store[key]
	if !exists || entry.IsExpired(m.now()) {
		return nil, nil // Cache miss
	}

	out := make([]byte, len(entry.Value))
	copy(out, entry.Value)
	return out, nil
}

// Set writes a value.
func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.store[key] = &MemoryCacheEntry{Value: stored, ExpiresAt: expiresAt}

	m.sweepLocked(now)
	return nil
}

// Delete removes a key.
func (m *MemoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, key)
	return nil
}

// Has reports whether key holds a live value.
func (m *MemoryCache) Has(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.store[key]
	return exists && !entry.IsExpired(m.now()), nil
}

// Flush clears the cache.
func (m *MemoryCache) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*MemoryCacheEntry)
	m.logger.Println("⚠️  Memory cache flushed")

	return nil
}

// Stats returns memory cache statistics.
func (m *MemoryCache) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	validCount := 0
	for _, entry := range m.store {
		if !entry.IsExpired(now) {
			validCount++
		}
	}

	return map[string]interface{}{
		"driver":       DriverMemory,
		"total_keys":   len(m.store),
		"valid_keys":   validCount,
		"expired_keys": len(m.store) - validCount,
	}
}

// sweepLocked drops expired entries. Caller holds the write lock.
func (m *MemoryCache) sweepLocked(now time.Time) {
	for key, entry := range m.store {
		if entry.IsExpired(now) {
			delete(m.store, key)
		}
	}
}
