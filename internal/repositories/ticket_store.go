// -----------------------------------------------------------------------------
// Ticket Store
// -----------------------------------------------------------------------------
// In-memory catalog, purchase ledger and validation log behind one mutex.
// Capacity accounting, the used latch and the validation log append all
// happen under the same lock, so concurrent purchases cannot oversell and a
// ticket cannot be admitted twice.
//
// Capacity rule: a purchase holds Quantity tickets of its type while it is
// pending or paid. Moving to failed or refunded gives them back.
//
// Every mutation writes a snapshot under TicketStoreKey.
// -----------------------------------------------------------------------------

package repositories

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/doujindesk/doujindesk-api/internal/models"
)

// TicketCatalog manages ticket types.
type TicketCatalog interface {
	AddTicketType(ticketType *models.TicketType) error
	UpdateTicketType(id string, patch *models.TicketTypePatch) (*models.TicketType, error)
	DeleteTicketType(id string) error
	FindTicketType(id string) (*models.TicketType, error)
	ListTicketTypes(activeOnly bool) []*models.TicketType
}

// PurchaseLedger manages purchases.
type PurchaseLedger interface {
	AddPurchase(purchase *models.TicketPurchase) error
	UpdatePurchase(id string, mutate func(purchase *models.TicketPurchase) error) (*models.TicketPurchase, error)
	FindPurchase(id string) (*models.TicketPurchase, error)
	FindPurchaseByQRCode(qrCode string) (*models.TicketPurchase, error)
	GetPurchasesByEmail(email string) []*models.TicketPurchase
	ListPurchases() []*models.TicketPurchase
}

// ScanFunc decides the outcome of one gate scan. purchase is nil when no
// purchase carries the scanned code. Changes made to purchase are kept only
// when the returned validation is valid.
type ScanFunc func(purchase *models.TicketPurchase) *models.TicketValidation

// ValidationLog is the append-only scan audit trail.
type ValidationLog interface {
	ApplyScan(qrCode string, scan ScanFunc) (*models.TicketValidation, error)
	ListValidations() []*models.TicketValidation
	ValidationsForTicket(ticketID string) []*models.TicketValidation
}

// TicketRepository is everything TicketStore provides.
type TicketRepository interface {
	TicketCatalog
	PurchaseLedger
	ValidationLog
}

type ticketStoreSnapshot struct {
	TicketTypes []*models.TicketType       `json:"ticketTypes"`
	Purchases   []*models.TicketPurchase   `json:"purchases"`
	Validations []*models.TicketValidation `json:"validations"`
}

type TicketStore struct {
	mu           sync.RWMutex
	ticketTypes  []*models.TicketType
	purchases    []*models.TicketPurchase
	purchaseByID map[string]*models.TicketPurchase
	purchaseByQR map[string]*models.TicketPurchase
	validations  []*models.TicketValidation
	persister    Persister
	logger       *log.Logger
}

func NewTicketStore(persister Persister, logger *log.Logger) *TicketStore {
	return &TicketStore{
		purchaseByID: make(map[string]*models.TicketPurchase),
		purchaseByQR: make(map[string]*models.TicketPurchase),
		persister:    persister,
		logger:       logger,
	}
}

// Restore loads the last snapshot, or seeds the catalog when none exists.
func (s *TicketStore) Restore(seed []*models.TicketType) error {
	var snap ticketStoreSnapshot
	found, err := s.persister.Load(TicketStoreKey, &snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !found {
		s.ticketTypes = nil
		for _, tt := range seed {
			s.ticketTypes = append(s.ticketTypes, tt.Clone())
		}
		s.logger.Printf("✅ Ticket catalog seeded with %d ticket types", len(seed))
		s.persistLocked()
		return nil
	}

	s.ticketTypes = snap.TicketTypes
	s.purchases = nil
	s.purchaseByID = make(map[string]*models.TicketPurchase)
	s.purchaseByQR = make(map[string]*models.TicketPurchase)
	for _, p := range snap.Purchases {
		s.indexLocked(p)
	}
	s.validations = snap.Validations

	s.logger.Printf("✅ Ticket store restored: %d types, %d purchases, %d validations",
		len(s.ticketTypes), len(s.purchases), len(s.validations))
	return nil
}

func (s *TicketStore) indexLocked(p *models.TicketPurchase) {
	s.purchases = append(s.purchases, p)
	s.purchaseByID[p.ID] = p
	if p.QRCode != "" {
		s.purchaseByQR[p.QRCode] = p
	}
}

func (s *TicketStore) persistLocked() {
	snap := ticketStoreSnapshot{
		TicketTypes: s.ticketTypes,
		Purchases:   s.purchases,
		Validations: s.validations,
	}
	if err := s.persister.Save(TicketStoreKey, snap); err != nil {
		s.logger.Printf("⚠️  Ticket store snapshot failed: %v", err)
	}
}

func (s *TicketStore) findTypeLocked(id string) (int, *models.TicketType) {
	for i, tt := range s.ticketTypes {
		if tt.ID == id {
			return i, tt
		}
	}
	return -1, nil
}

// ----- Catalog -----

func (s *TicketStore) AddTicketType(ticketType *models.TicketType) error {
	if ticketType.ID == "" {
		return fmt.Errorf("ticket type id is required")
	}
	if err := ticketType.CheckCapacity(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, existing := s.findTypeLocked(ticketType.ID); existing != nil {
		return models.ErrTicketTypeExists
	}

	s.ticketTypes = append(s.ticketTypes, ticketType.Clone())
	s.persistLocked()
	return nil
}

func (s *TicketStore) UpdateTicketType(id string, patch *models.TicketTypePatch) (*models.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, current := s.findTypeLocked(id)
	if current == nil {
		return nil, models.ErrTicketTypeNotFound
	}

	updated := current.Clone()
	patch.Apply(updated)
	if err := updated.CheckCapacity(); err != nil {
		return nil, err
	}

	s.ticketTypes[i] = updated
	s.persistLocked()
	return updated.Clone(), nil
}

func (s *TicketStore) DeleteTicketType(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, current := s.findTypeLocked(id)
	if current == nil {
		return models.ErrTicketTypeNotFound
	}

	s.ticketTypes = append(s.ticketTypes[:i], s.ticketTypes[i+1:]...)
	s.persistLocked()
	return nil
}

func (s *TicketStore) FindTicketType(id string) (*models.TicketType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, tt := s.findTypeLocked(id)
	if tt == nil {
		return nil, models.ErrTicketTypeNotFound
	}
	return tt.Clone(), nil
}

func (s *TicketStore) ListTicketTypes(activeOnly bool) []*models.TicketType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.TicketType, 0, len(s.ticketTypes))
	for _, tt := range s.ticketTypes {
		if activeOnly && !tt.IsActive {
			continue
		}
		result = append(result, tt.Clone())
	}
	return result
}

// ----- Ledger -----

// AddPurchase records purchase and, when it holds capacity, takes its
// quantity out of the ticket type in the same critical section.
func (s *TicketStore) AddPurchase(purchase *models.TicketPurchase) error {
	if purchase.Quantity < 1 {
		return models.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.purchaseByID[purchase.ID]; exists {
		return models.ErrPurchaseExists
	}
	if _, exists := s.purchaseByQR[purchase.QRCode]; exists && purchase.QRCode != "" {
		return models.ErrPurchaseExists
	}

	_, tt := s.findTypeLocked(purchase.TicketTypeID)
	if tt == nil {
		return models.ErrTicketTypeNotFound
	}
	if !tt.IsActive {
		return models.ErrTicketTypeInactive
	}

	if purchase.HoldsCapacity() {
		if err := tt.Reserve(purchase.Quantity); err != nil {
			return err
		}
	}

	s.indexLocked(purchase.Clone())
	s.persistLocked()
	return nil
}

// UpdatePurchase applies mutate to a copy of the purchase and commits it.
// Id, ticket type, quantity and QR code cannot change, and a used ticket
// stays used. Capacity follows payment status changes.
func (s *TicketStore) UpdatePurchase(id string, mutate func(purchase *models.TicketPurchase) error) (*models.TicketPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.purchaseByID[id]
	if !ok {
		return nil, models.ErrPurchaseNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := s.commitLocked(current, working); err != nil {
		return nil, err
	}

	s.persistLocked()
	return current.Clone(), nil
}

func (s *TicketStore) commitLocked(current, working *models.TicketPurchase) error {
	if working.ID != current.ID ||
		working.TicketTypeID != current.TicketTypeID ||
		working.Quantity != current.Quantity ||
		working.QRCode != current.QRCode {
		return models.ErrImmutableField
	}
	if current.IsUsed && !working.IsUsed {
		return models.ErrInvalidStateTransition
	}

	wasHolding, nowHolding := current.HoldsCapacity(), working.HoldsCapacity()
	if wasHolding != nowHolding {
		_, tt := s.findTypeLocked(current.TicketTypeID)
		switch {
		case tt == nil:
			s.logger.Printf("⚠️  Ticket type %s no longer exists, capacity of purchase %s not adjusted",
				current.TicketTypeID, current.ID)
		case wasHolding:
			tt.Release(current.Quantity)
		default:
			if err := tt.Reserve(current.Quantity); err != nil {
				return err
			}
		}
	}

	*current = *working
	return nil
}

func (s *TicketStore) FindPurchase(id string) (*models.TicketPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchaseByID[id]
	if !ok {
		return nil, models.ErrPurchaseNotFound
	}
	return p.Clone(), nil
}

func (s *TicketStore) FindPurchaseByQRCode(qrCode string) (*models.TicketPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchaseByQR[qrCode]
	if !ok {
		return nil, models.ErrPurchaseNotFound
	}
	return p.Clone(), nil
}

// GetPurchasesByEmail matches the attendee email case-insensitively.
func (s *TicketStore) GetPurchasesByEmail(email string) []*models.TicketPurchase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.TrimSpace(email)
	result := []*models.TicketPurchase{}
	for _, p := range s.purchases {
		if strings.EqualFold(p.AttendeeEmail, email) {
			result = append(result, p.Clone())
		}
	}
	return result
}

func (s *TicketStore) ListPurchases() []*models.TicketPurchase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.TicketPurchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		result = append(result, p.Clone())
	}
	return result
}

// ----- Validation log -----

// ApplyScan runs scan against the purchase carrying qrCode and appends the
// returned validation to the log. Exactly one record is appended per call.
func (s *TicketStore) ApplyScan(qrCode string, scan ScanFunc) (*models.TicketValidation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.purchaseByQR[qrCode]
	var working *models.TicketPurchase
	if current != nil {
		working = current.Clone()
	}

	validation := scan(working)
	if validation == nil {
		return nil, fmt.Errorf("scan produced no validation record")
	}

	record := *validation
	if record.IsValid && current != nil {
		if err := s.commitLocked(current, working); err != nil {
			record.IsValid = false
			record.ErrorReason = err.Error()
		}
	}

	s.validations = append(s.validations, &record)
	s.persistLocked()

	out := record
	return &out, nil
}

func (s *TicketStore) ListValidations() []*models.TicketValidation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.TicketValidation, 0, len(s.validations))
	for _, v := range s.validations {
		c := *v
		result = append(result, &c)
	}
	return result
}

func (s *TicketStore) ValidationsForTicket(ticketID string) []*models.TicketValidation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.TicketValidation{}
	for _, v := range s.validations {
		if v.TicketID == ticketID {
			c := *v
			result = append(result, &c)
		}
	}
	return result
}
