package repositories

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/doujindesk/doujindesk-api/internal/models"
)

type circleStoreSnapshot struct {
	Circles []models.Circle `json:"circles"`
}

// MemoryCircleRepository is the CircleRepository used when no MySQL DSN is
// configured. Applications are snapshotted under CircleStoreKey.
type MemoryCircleRepository struct {
	mu        sync.RWMutex
	circles   map[string]*models.Circle
	persister Persister
	logger    *log.Logger
}

func NewMemoryCircleRepository(persister Persister, logger *log.Logger) *MemoryCircleRepository {
	return &MemoryCircleRepository{
		circles:   make(map[string]*models.Circle),
		persister: persister,
		logger:    logger,
	}
}

func (r *MemoryCircleRepository) Restore() error {
	var snap circleStoreSnapshot
	found, err := r.persister.Load(CircleStoreKey, &snap)
	if err != nil || !found {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range snap.Circles {
		c := snap.Circles[i]
		r.circles[c.ID] = &c
	}
	r.logger.Printf("✅ Circle applications restored: %d", len(r.circles))
	return nil
}

func (r *MemoryCircleRepository) persistLocked() {
	snap := circleStoreSnapshot{Circles: make([]models.Circle, 0, len(r.circles))}
	for _, c := range r.circles {
		snap.Circles = append(snap.Circles, *c)
	}
	sort.Slice(snap.Circles, func(i, j int) bool { return snap.Circles[i].ID < snap.Circles[j].ID })

	if err := r.persister.Save(CircleStoreKey, snap); err != nil {
		r.logger.Printf("⚠️  Circle snapshot failed: %v", err)
	}
}

func (r *MemoryCircleRepository) Create(ctx context.Context, circle *models.Circle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *circle
	r.circles[c.ID] = &c
	r.persistLocked()
	return nil
}

func (r *MemoryCircleRepository) FindByID(ctx context.Context, id string) (*models.Circle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.circles[id]
	if !ok {
		return nil, models.ErrCircleNotFound
	}
	copied := *c
	return &copied, nil
}

// List returns circles newest first, like the MySQL repository.
func (r *MemoryCircleRepository) List(ctx context.Context, status models.CircleStatus) ([]*models.Circle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Circle{}
	for _, c := range r.circles {
		if status != "" && c.Status != status {
			continue
		}
		copied := *c
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Update replaces a stored circle. The email cannot change.
func (r *MemoryCircleRepository) Update(ctx context.Context, circle *models.Circle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.circles[circle.ID]
	if !ok {
		return models.ErrCircleNotFound
	}

	c := *circle
	c.Email = current.Email
	c.CreatedAt = current.CreatedAt
	r.circles[c.ID] = &c
	r.persistLocked()
	return nil
}
