package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/monitoring"
	"github.com/doujindesk/doujindesk-api/internal/notification"
	"github.com/doujindesk/doujindesk-api/internal/patterns/factory"
	"github.com/doujindesk/doujindesk-api/internal/patterns/strategy"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/token"
	"github.com/shopspring/decimal"
)

// ValidationIDPrefix prefixes every validation record id.
const ValidationIDPrefix = "VAL"

// QuoteInput asks for the price of quantity tickets.
type QuoteInput struct {
	TicketTypeID string          `json:"ticket_type_id" validate:"notblank"`
	Quantity     int             `json:"quantity" validate:"gte=1"`
	IsPWD        bool            `json:"is_pwd"`
	IsChild      bool            `json:"is_child"`
	Age          *int            `json:"age,omitempty" validate:"omitempty,gte=0,max=130"`
	Currency     models.Currency `json:"currency" validate:"omitempty,oneof=IDR USD"`
}

func (in *QuoteInput) flags() strategy.DiscountFlags {
	return strategy.DiscountFlags{IsPWD: in.IsPWD, IsChild: in.IsChild, Age: in.Age}
}

// PurchaseInput is a checkout request.
type PurchaseInput struct {
	TicketTypeID  string          `json:"ticket_type_id" validate:"notblank"`
	Quantity      int             `json:"quantity" validate:"gte=1"`
	IsPWD         bool            `json:"is_pwd"`
	IsChild       bool            `json:"is_child"`
	Age           *int            `json:"age,omitempty" validate:"omitempty,gte=0,max=130"`
	Currency      models.Currency `json:"currency" validate:"omitempty,oneof=IDR USD"`
	AttendeeName  string          `json:"attendee_name" validate:"notblank,max=120"`
	AttendeeEmail string          `json:"attendee_email" validate:"required,email"`
	AttendeePhone string          `json:"attendee_phone,omitempty" validate:"phone"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=card ewallet bank_transfer cash"`
}

func (in *PurchaseInput) flags() strategy.DiscountFlags {
	return strategy.DiscountFlags{IsPWD: in.IsPWD, IsChild: in.IsChild, Age: in.Age}
}

// ValidateInput is one gate scan.
type ValidateInput struct {
	QRCode         string                `json:"qr_code"`
	GateID         string                `json:"gate_id" validate:"notblank"`
	StaffID        string                `json:"staff_id" validate:"notblank"`
	ValidationType models.ValidationType `json:"validation_type" validate:"omitempty,oneof=entry exit area_access"`
}

// TicketTypeInput creates a catalog entry.
type TicketTypeInput struct {
	ID             string                `json:"id" validate:"notblank,max=64"`
	Name           string                `json:"name" validate:"notblank,max=120"`
	Description    string                `json:"description" validate:"max=2000"`
	PriceIDR       decimal.Decimal       `json:"price_idr"`
	PriceUSD       decimal.Decimal       `json:"price_usd"`
	Category       models.TicketCategory `json:"category" validate:"required,oneof=weekend single_day vip special"`
	Benefits       []string              `json:"benefits,omitempty"`
	MaxQuantity    int                   `json:"max_quantity" validate:"gte=0"`
	IsActive       bool                  `json:"is_active"`
	EarlyBird      *models.EarlyBird     `json:"early_bird,omitempty"`
	AgeRestriction int                   `json:"age_restriction,omitempty" validate:"gte=0"`
	RequiresID     bool                  `json:"requires_id"`
}

// TicketService orchestrates pricing, checkout, refunds and gate scans over
// the ticket store.
type TicketService struct {
	store      repositories.TicketRepository
	calculator *strategy.Calculator
	factory    *factory.TicketFactory
	printer    *factory.TicketPrinter
	payments   PaymentProcessor
	sales      *SalesAggregator
	dispatcher *events.Dispatcher
	metrics    *monitoring.Metrics
	logger     *log.Logger
	now        func() time.Time
}

// NewTicketService wires the service. metrics may be nil.
func NewTicketService(
	store repositories.TicketRepository,
	ticketFactory *factory.TicketFactory,
	payments PaymentProcessor,
	dispatcher *events.Dispatcher,
	metrics *monitoring.Metrics,
	logger *log.Logger,
) *TicketService {
	s := &TicketService{
		store:      store,
		calculator: strategy.NewCalculator(),
		factory:    ticketFactory,
		printer:    factory.NewTicketPrinter(ticketFactory),
		payments:   payments,
		sales:      NewSalesAggregator(),
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	s.RecomputeSales()
	return s
}

// ----- Pricing -----

// Quote prices a purchase without recording anything.
func (s *TicketService) Quote(ctx context.Context, input *QuoteInput) (*strategy.PriceQuote, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	ticketType, err := s.store.FindTicketType(input.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("ticket type %s: %w", input.TicketTypeID, err)
	}

	return s.calculator.CalculateTicketPrice(ticketType, input.Quantity, input.flags(), currencyOrDefault(input.Currency), s.now())
}

// ----- Checkout -----

// Purchase runs checkout: quote, charge, record. A declined payment records
// nothing and fails with ErrPaymentDeclined.
func (s *TicketService) Purchase(ctx context.Context, input *PurchaseInput) (*models.TicketPurchase, error) {
	// 1. Validate input
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := s.now()
	currency := currencyOrDefault(input.Currency)

	// 2. Business rules
	ticketType, err := s.store.FindTicketType(input.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("ticket type %s: %w", input.TicketTypeID, err)
	}
	if !ticketType.IsActive {
		return nil, models.ErrTicketTypeInactive
	}
	if ticketType.AgeRestriction > 0 {
		if input.Age == nil {
			return nil, models.ErrAgeRequired
		}
		if *input.Age < ticketType.AgeRestriction {
			return nil, models.ErrAgeRestricted
		}
	}
	if ticketType.AvailableQuantity < input.Quantity {
		return nil, models.ErrSoldOut
	}

	// 3. Price
	quote, err := s.calculator.CalculateTicketPrice(ticketType, input.Quantity, input.flags(), currency, now)
	if err != nil {
		return nil, err
	}

	// 4. Build the purchase with its QR token
	purchase, err := s.factory.CreatePurchase(&factory.PurchaseCreationRequest{
		TicketType:    ticketType,
		Quote:         quote,
		AttendeeName:  strings.TrimSpace(input.AttendeeName),
		AttendeeEmail: input.AttendeeEmail,
		AttendeePhone: input.AttendeePhone,
		Currency:      currency,
		PaymentMethod: input.PaymentMethod,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	// 5. Charge
	result, err := s.payments.Charge(ctx, &PaymentRequest{
		PurchaseID:    purchase.ID,
		Amount:        purchase.ChargedAmount(),
		Currency:      currency,
		Method:        input.PaymentMethod,
		AttendeeEmail: purchase.AttendeeEmail,
	})
	if err != nil {
		s.logger.Printf("❌ Payment failed for %s: %v", purchase.AttendeeEmail, err)
		s.dispatch(events.EventPaymentFailed, &notification.PaymentFailure{
			TicketTypeID:  purchase.TicketTypeID,
			AttendeeEmail: purchase.AttendeeEmail,
			Quantity:      purchase.Quantity,
			Amount:        purchase.ChargedAmount(),
			Currency:      currency,
			Reason:        err.Error(),
		})
		if errors.Is(err, models.ErrPaymentDeclined) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentDeclined, err)
	}

	purchase.PaymentRef = result.Reference
	if result.Status == models.PaymentStatusPaid {
		if err := purchase.MarkAsPaid(result.Reference); err != nil {
			return nil, err
		}
	}

	// 6. Record; capacity is taken in the same step
	if err := s.store.AddPurchase(purchase); err != nil {
		if result.Status == models.PaymentStatusPaid {
			s.logger.Printf("⚠️  Purchase %s not recorded after payment %s, voiding: %v",
				purchase.ID, result.Reference, err)
			s.dispatch(events.EventPaymentFailed, &notification.PaymentFailure{
				PurchaseID:    purchase.ID,
				PaymentRef:    result.Reference,
				Voided:        true,
				TicketTypeID:  purchase.TicketTypeID,
				AttendeeEmail: purchase.AttendeeEmail,
				Quantity:      purchase.Quantity,
				Amount:        purchase.ChargedAmount(),
				Currency:      currency,
				Reason:        err.Error(),
			})
		}
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	s.logger.Printf("✅ Purchase %s recorded: %s x%d (%s)", purchase.ID, purchase.TicketTypeID, purchase.Quantity, purchase.PaymentStatus)

	s.RecomputeSales()
	s.dispatch(events.EventTicketPurchased, purchase)

	return purchase, nil
}

// ConfirmPayment settles a pending purchase.
func (s *TicketService) ConfirmPayment(ctx context.Context, id, reference string) (*models.TicketPurchase, error) {
	purchase, err := s.store.UpdatePurchase(id, func(p *models.TicketPurchase) error {
		if reference == "" {
			reference = p.PaymentRef
		}
		if err := p.MarkAsPaid(reference); err != nil {
			return err
		}
		p.Touch(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm payment of %s: %w", id, err)
	}

	s.RecomputeSales()
	s.dispatch(events.EventPaymentConfirmed, purchase)
	return purchase, nil
}

// MarkFailed fails a pending purchase and gives its tickets back.
func (s *TicketService) MarkFailed(ctx context.Context, id, reason string) (*models.TicketPurchase, error) {
	purchase, err := s.store.UpdatePurchase(id, func(p *models.TicketPurchase) error {
		if err := p.MarkAsFailed(); err != nil {
			return err
		}
		p.Touch(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mark %s failed: %w", id, err)
	}

	if reason == "" {
		reason = "payment not received"
	}
	s.RecomputeSales()
	s.dispatch(events.EventPaymentFailed, &notification.PaymentFailure{
		PurchaseID:    purchase.ID,
		TicketTypeID:  purchase.TicketTypeID,
		AttendeeEmail: purchase.AttendeeEmail,
		Quantity:      purchase.Quantity,
		Amount:        purchase.ChargedAmount(),
		Currency:      purchase.Currency,
		Reason:        reason,
	})
	return purchase, nil
}

// Refund refunds a paid, unused purchase and gives its tickets back.
func (s *TicketService) Refund(ctx context.Context, id string) (*models.TicketPurchase, error) {
	purchase, err := s.store.UpdatePurchase(id, func(p *models.TicketPurchase) error {
		return p.MarkAsRefunded(s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("refund %s: %w", id, err)
	}

	s.logger.Printf("✅ Purchase %s refunded", purchase.ID)

	s.RecomputeSales()
	s.dispatch(events.EventTicketRefunded, purchase)
	return purchase, nil
}

// ----- Gate -----

// ValidateTicket processes one gate scan. Every call that passes input
// validation appends exactly one record to the validation log, accepted or
// rejected; the returned error is reserved for requests that never became a
// scan.
func (s *TicketService) ValidateTicket(ctx context.Context, input *ValidateInput) (*models.TicketValidation, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	validationType := input.ValidationType
	if validationType == "" {
		validationType = models.ValidationTypeEntry
	}

	now := s.now()
	id, err := token.GenerateID(ValidationIDPrefix, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate validation id: %w", err)
	}

	validation, err := s.store.ApplyScan(input.QRCode, func(p *models.TicketPurchase) *models.TicketValidation {
		record := &models.TicketValidation{
			ID:             id,
			QRCode:         input.QRCode,
			ValidationType: validationType,
			GateID:         input.GateID,
			StaffID:        input.StaffID,
			Timestamp:      now,
		}

		if p == nil {
			record.ErrorReason = models.ReasonNotFound
			return record
		}
		record.TicketID = p.ID

		if reason := p.AdmissionCheck(validationType, now); reason != "" {
			record.ErrorReason = reason
			return record
		}

		if validationType == models.ValidationTypeEntry {
			if err := p.MarkAsUsed(input.GateID, now); err != nil {
				record.ErrorReason = models.ReasonAlreadyUsed
				return record
			}
		}
		record.IsValid = true
		return record
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}

	if validation.IsValid {
		s.logger.Printf("✅ Gate %s: %s accepted for %s", validation.GateID, validation.ValidationType, validation.TicketID)
		s.dispatch(events.EventTicketValidated, validation)
	} else {
		s.logger.Printf("⚠️  Gate %s: %s rejected (%s)", validation.GateID, validation.ValidationType, validation.ErrorReason)
		s.dispatch(events.EventTicketRejected, validation)
	}

	return validation, nil
}

// ListValidations returns the scan log, or the scans of one ticket when
// ticketID is set.
func (s *TicketService) ListValidations(ctx context.Context, ticketID string) []*models.TicketValidation {
	if ticketID != "" {
		return s.store.ValidationsForTicket(ticketID)
	}
	return s.store.ListValidations()
}

// ----- Lookups -----

func (s *TicketService) GetPurchase(ctx context.Context, id string) (*models.TicketPurchase, error) {
	purchase, err := s.store.FindPurchase(id)
	if err != nil {
		return nil, fmt.Errorf("purchase %s: %w", id, err)
	}
	return purchase, nil
}

func (s *TicketService) GetPurchasesByEmail(ctx context.Context, email string) ([]*models.TicketPurchase, error) {
	if strings.TrimSpace(email) == "" {
		return nil, models.NewValidationError("email: is required", map[string][]string{"email": {"is required"}})
	}
	return s.store.GetPurchasesByEmail(email), nil
}

func (s *TicketService) ListPurchases(ctx context.Context) []*models.TicketPurchase {
	return s.store.ListPurchases()
}

// PrintableTicket renders the ticket page data of a paid purchase.
func (s *TicketService) PrintableTicket(ctx context.Context, id string) (*factory.PrintableTicket, error) {
	purchase, err := s.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if !purchase.IsPaid() {
		return nil, fmt.Errorf("ticket %s: %w", id, models.ErrInvalidStateTransition)
	}

	return s.printer.GeneratePrintableTicket(purchase, s.categoryOf(purchase))
}

// RenderTicketQR renders the QR PNG attached to ticket mails.
func (s *TicketService) RenderTicketQR(purchase *models.TicketPurchase) ([]byte, error) {
	return s.factory.RenderQRCode(purchase, s.categoryOf(purchase))
}

func (s *TicketService) categoryOf(purchase *models.TicketPurchase) models.TicketCategory {
	if ticketType, err := s.store.FindTicketType(purchase.TicketTypeID); err == nil {
		return ticketType.Category
	}
	return models.TicketCategorySingleDay
}

// ----- Catalog -----

func (s *TicketService) ListTicketTypes(ctx context.Context, activeOnly bool) []*models.TicketType {
	return s.store.ListTicketTypes(activeOnly)
}

func (s *TicketService) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	ticketType, err := s.store.FindTicketType(id)
	if err != nil {
		return nil, fmt.Errorf("ticket type %s: %w", id, err)
	}
	return ticketType, nil
}

// CreateTicketType adds a catalog entry with its full capacity available.
func (s *TicketService) CreateTicketType(ctx context.Context, input *TicketTypeInput) (*models.TicketType, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.PriceIDR.IsNegative() || input.PriceUSD.IsNegative() {
		return nil, models.NewValidationError("price: must not be negative",
			map[string][]string{"price": {"must not be negative"}})
	}

	ticketType := &models.TicketType{
		BaseModel:         models.BaseModel{ID: strings.TrimSpace(input.ID)},
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		PriceIDR:          input.PriceIDR,
		PriceUSD:          input.PriceUSD,
		Category:          input.Category,
		Benefits:          input.Benefits,
		MaxQuantity:       input.MaxQuantity,
		AvailableQuantity: input.MaxQuantity,
		IsActive:          input.IsActive,
		EarlyBird:         input.EarlyBird,
		AgeRestriction:    input.AgeRestriction,
		RequiresID:        input.RequiresID,
	}
	ticketType.Initialize(s.now())

	if err := s.store.AddTicketType(ticketType); err != nil {
		return nil, fmt.Errorf("add ticket type %s: %w", ticketType.ID, err)
	}

	s.logger.Printf("✅ Ticket type %s added (%d tickets)", ticketType.ID, ticketType.MaxQuantity)
	s.RecomputeSales()
	return ticketType.Clone(), nil
}

// UpdateTicketType applies a partial update.
func (s *TicketService) UpdateTicketType(ctx context.Context, id string, patch *models.TicketTypePatch) (*models.TicketType, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return nil, models.NewValidationError("category: is invalid",
			map[string][]string{"category": {"is invalid"}})
	}
	if (patch.PriceIDR != nil && patch.PriceIDR.IsNegative()) || (patch.PriceUSD != nil && patch.PriceUSD.IsNegative()) {
		return nil, models.NewValidationError("price: must not be negative",
			map[string][]string{"price": {"must not be negative"}})
	}

	ticketType, err := s.store.UpdateTicketType(id, patch)
	if err != nil {
		return nil, fmt.Errorf("update ticket type %s: %w", id, err)
	}

	s.RecomputeSales()
	return ticketType, nil
}

// DeleteTicketType removes a catalog entry. Existing purchases keep their
// copy of the type name.
func (s *TicketService) DeleteTicketType(ctx context.Context, id string) error {
	if err := s.store.DeleteTicketType(id); err != nil {
		return fmt.Errorf("delete ticket type %s: %w", id, err)
	}
	s.logger.Printf("🗑️  Ticket type %s deleted", id)
	return nil
}

// ----- Sales -----

// SalesStats returns the last computed sales summary.
func (s *TicketService) SalesStats(ctx context.Context) *SalesStats {
	return s.sales.Current()
}

// RecomputeSales rebuilds the sales summary from the ledger and publishes
// revenue and remaining capacity.
func (s *TicketService) RecomputeSales() *SalesStats {
	stats := s.sales.Recompute(s.store.ListPurchases(), s.now())

	if s.metrics != nil {
		s.metrics.SetRevenue(string(models.CurrencyIDR), stats.TotalRevenueIDR)
		s.metrics.SetRevenue(string(models.CurrencyUSD), stats.TotalRevenueUSD)
		for _, tt := range s.store.ListTicketTypes(false) {
			s.metrics.SetTicketsAvailable(tt.ID, tt.AvailableQuantity)
		}
	}
	return stats
}

func (s *TicketService) dispatch(name string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(events.NewBaseEvent(name, payload)); err != nil {
		s.logger.Printf("⚠️  Listener failed for %s: %v", name, err)
	}
}

func currencyOrDefault(c models.Currency) models.Currency {
	if c.Valid() {
		return c
	}
	return models.CurrencyIDR
}
