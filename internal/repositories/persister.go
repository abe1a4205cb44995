package repositories

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/doujindesk/doujindesk-api/pkg/cache"
)

// Snapshot keys, one per store.
const (
	TicketStoreKey    = "doujindesk-ticket-store"
	StaffStoreKey     = "doujindesk-staff-store"
	FinancialStoreKey = "financial-store"
	CircleStoreKey    = "doujindesk-circle-store"
)

// Persister mirrors store snapshots to durable storage.
type Persister interface {
	Save(key string, snapshot interface{}) error
	Load(key string, snapshot interface{}) (bool, error)
}

// CachePersister writes JSON snapshots through a cache driver.
type CachePersister struct {
	cache  cache.Cache
	logger *log.Logger
}

func NewCachePersister(c cache.Cache, logger *log.Logger) *CachePersister {
	return &CachePersister{cache: c, logger: logger}
}

func (p *CachePersister) Save(key string, snapshot interface{}) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}

	if err := p.cache.Set(key, data, 0); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}

	return nil
}

// Load decodes the snapshot stored under key into snapshot. It reports
// false when nothing has been saved yet.
func (p *CachePersister) Load(key string, snapshot interface{}) (bool, error) {
	data, err := p.cache.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, snapshot); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}

	p.logger.Printf("✅ Snapshot restored: %s (%d bytes)", key, len(data))
	return true, nil
}

// NopPersister keeps nothing.
type NopPersister struct{}

func (NopPersister) Save(string, interface{}) error         { return nil }
func (NopPersister) Load(string, interface{}) (bool, error) { return false, nil }
