package repositories

import (
	"log"
	"strings"
	"sync"

	"github.com/doujindesk/doujindesk-api/internal/models"
)

type staffStoreSnapshot struct {
	Staff []models.StaffRecord `json:"staff"`
}

// StaffRepository keeps the crew roster in memory, snapshotted under
// StaffStoreKey. Emails are unique, compared case-insensitively.
type StaffRepository struct {
	mu        sync.RWMutex
	staff     []*models.Staff
	persister Persister
	logger    *log.Logger
}

func NewStaffRepository(persister Persister, logger *log.Logger) *StaffRepository {
	return &StaffRepository{persister: persister, logger: logger}
}

func (r *StaffRepository) Restore() error {
	var snap staffStoreSnapshot
	found, err := r.persister.Load(StaffStoreKey, &snap)
	if err != nil || !found {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.staff = make([]*models.Staff, 0, len(snap.Staff))
	for _, rec := range snap.Staff {
		s := rec.Staff
		s.PasscodeHash = rec.PasscodeHash
		r.staff = append(r.staff, &s)
	}
	r.logger.Printf("✅ Staff roster restored: %d members", len(r.staff))
	return nil
}

func (r *StaffRepository) persistLocked() {
	snap := staffStoreSnapshot{Staff: make([]models.StaffRecord, 0, len(r.staff))}
	for _, s := range r.staff {
		snap.Staff = append(snap.Staff, models.StaffRecord{Staff: *s, PasscodeHash: s.PasscodeHash})
	}
	if err := r.persister.Save(StaffStoreKey, snap); err != nil {
		r.logger.Printf("⚠️  Staff roster snapshot failed: %v", err)
	}
}

func (r *StaffRepository) findByEmailLocked(email string) *models.Staff {
	for _, s := range r.staff {
		if strings.EqualFold(s.Email, email) {
			return s
		}
	}
	return nil
}

func (r *StaffRepository) Create(staff *models.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByEmailLocked(staff.Email) != nil {
		return models.ErrStaffExists
	}

	s := *staff
	r.staff = append(r.staff, &s)
	r.persistLocked()
	return nil
}

func (r *StaffRepository) FindByID(id string) (*models.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.staff {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, models.ErrStaffNotFound
}

func (r *StaffRepository) FindByEmail(email string) (*models.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := r.findByEmailLocked(strings.TrimSpace(email))
	if s == nil {
		return nil, models.ErrStaffNotFound
	}
	c := *s
	return &c, nil
}

func (r *StaffRepository) List() []*models.Staff {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Staff, 0, len(r.staff))
	for _, s := range r.staff {
		c := *s
		result = append(result, &c)
	}
	return result
}

// Update applies mutate to a copy of the member and stores it. The id and
// email cannot change.
func (r *StaffRepository) Update(id string, mutate func(staff *models.Staff) error) (*models.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.staff {
		if s.ID != id {
			continue
		}

		working := *s
		if err := mutate(&working); err != nil {
			return nil, err
		}
		working.ID = s.ID
		working.Email = s.Email
		*s = working

		r.persistLocked()
		c := *s
		return &c, nil
	}
	return nil, models.ErrStaffNotFound
}
