package queue

import (
	"fmt"
	"sync"
)

// JobFactory returns an empty job ready for SetPayload. Factories close over
// the job's dependencies (a mailer, a logger).
type JobFactory func() Job

// Registry maps job types to factories so stored jobs can be rebuilt.
//
//	registry := queue.NewRegistry()
//	registry.Register(SendMailJobType, func() queue.Job {
//	    return &SendMailJob{mailer: mailer}
//	})
type Registry struct {
	mu        sync.RWMutex
	factories map[string]JobFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]JobFactory)}
}

func (r *Registry) Register(jobType string, factory JobFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[jobType] = factory
}

// Create builds an empty job of jobType.
func (r *Registry) Create(jobType string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[jobType]
	if !exists {
		return nil, fmt.Errorf("job type not registered: %s", jobType)
	}

	return factory(), nil
}
