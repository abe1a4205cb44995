// -----------------------------------------------------------------------------
// Ticket Models
// -----------------------------------------------------------------------------
// TicketType is a catalog entry, TicketPurchase is one buyer transaction.
// A purchase carries two independent state machines:
//
//	payment: pending → paid → refunded
//	         pending → failed
//	entry:   unused → used (one-way latch)
// -----------------------------------------------------------------------------

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies a ticket is priced in.
type Currency string

const (
	CurrencyIDR Currency = "IDR"
	CurrencyUSD Currency = "USD"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyIDR || c == CurrencyUSD
}

// TicketCategory groups ticket types.
type TicketCategory string

const (
	TicketCategoryWeekend   TicketCategory = "weekend"
	TicketCategorySingleDay TicketCategory = "single_day"
	TicketCategoryVIP       TicketCategory = "vip"
	TicketCategorySpecial   TicketCategory = "special"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryWeekend, TicketCategorySingleDay, TicketCategoryVIP, TicketCategorySpecial:
		return true
	}
	return false
}

// EarlyBird is a discounted price window preceding the standard sale period.
// EndDate is inclusive: the whole day of EndDate is still early bird.
type EarlyBird struct {
	PriceIDR  decimal.Decimal `json:"price_idr"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

// Active reports whether now falls inside the window.
func (e *EarlyBird) Active(now time.Time) bool {
	if e == nil {
		return false
	}
	if now.Before(e.StartDate) {
		return false
	}
	y, m, d := e.EndDate.Date()
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, e.EndDate.Location()).AddDate(0, 0, 1)
	return now.Before(endOfDay)
}

// TicketType is a catalog entry.
type TicketType struct {
	BaseModel
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	PriceIDR          decimal.Decimal `json:"price_idr"`
	PriceUSD          decimal.Decimal `json:"price_usd"`
	Category          TicketCategory  `json:"category"`
	Benefits          []string        `json:"benefits,omitempty"`
	MaxQuantity       int             `json:"max_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	IsActive          bool            `json:"is_active"`
	EarlyBird         *EarlyBird      `json:"early_bird,omitempty"`
	AgeRestriction    int             `json:"age_restriction,omitempty"`
	RequiresID        bool            `json:"requires_id"`
}

// CheckCapacity enforces 0 <= available <= max.
func (t *TicketType) CheckCapacity() error {
	if t.MaxQuantity < 0 || t.AvailableQuantity < 0 || t.AvailableQuantity > t.MaxQuantity {
		return ErrInvalidCapacity
	}
	return nil
}

// IsSoldOut reports whether no tickets remain.
func (t *TicketType) IsSoldOut() bool {
	return t.AvailableQuantity <= 0
}

// Reserve takes quantity tickets out of the available pool.
func (t *TicketType) Reserve(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if t.AvailableQuantity < quantity {
		return ErrSoldOut
	}
	t.AvailableQuantity -= quantity
	return nil
}

// Release returns quantity tickets to the pool, never above MaxQuantity.
func (t *TicketType) Release(quantity int) {
	t.AvailableQuantity += quantity
	if t.AvailableQuantity > t.MaxQuantity {
		t.AvailableQuantity = t.MaxQuantity
	}
}

// TicketTypePatch is a typed partial update of a TicketType. Nil fields are
// left untouched.
type TicketTypePatch struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	PriceIDR          *decimal.Decimal `json:"price_idr,omitempty"`
	PriceUSD          *decimal.Decimal `json:"price_usd,omitempty"`
	Category          *TicketCategory  `json:"category,omitempty"`
	Benefits          []string         `json:"benefits,omitempty"`
	MaxQuantity       *int             `json:"max_quantity,omitempty"`
	AvailableQuantity *int             `json:"available_quantity,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	EarlyBird         *EarlyBird       `json:"early_bird,omitempty"`
	ClearEarlyBird    bool             `json:"clear_early_bird,omitempty"`
	AgeRestriction    *int             `json:"age_restriction,omitempty"`
	RequiresID        *bool            `json:"requires_id,omitempty"`
}

// Apply merges the patch into t.
func (p *TicketTypePatch) Apply(t *TicketType) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.PriceIDR != nil {
		t.PriceIDR = *p.PriceIDR
	}
	if p.PriceUSD != nil {
		t.PriceUSD = *p.PriceUSD
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Benefits != nil {
		t.Benefits = p.Benefits
	}
	if p.MaxQuantity != nil {
		t.MaxQuantity = *p.MaxQuantity
	}
	if p.AvailableQuantity != nil {
		t.AvailableQuantity = *p.AvailableQuantity
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	if p.ClearEarlyBird {
		t.EarlyBird = nil
	} else if p.EarlyBird != nil {
		eb := *p.EarlyBird
		t.EarlyBird = &eb
	}
	if p.AgeRestriction != nil {
		t.AgeRestriction = *p.AgeRestriction
	}
	if p.RequiresID != nil {
		t.RequiresID = *p.RequiresID
	}
}

// PaymentStatus is the payment state of a purchase.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DiscountType labels the single discount applied to a purchase.
type DiscountType string

const (
	DiscountTypePWD   DiscountType = "pwd"
	DiscountTypeChild DiscountType = "child"
	DiscountTypeBulk  DiscountType = "bulk"
)

// AppliedDiscount describes the discount chosen by the pricing calculator.
// Amount is expressed in the display currency of the quote.
type AppliedDiscount struct {
	Type       DiscountType    `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	Percentage int             `json:"percentage"`
}

// TicketPurchase is one buyer transaction.
type TicketPurchase struct {
	BaseModel
	TicketTypeID   string           `json:"ticket_type_id"`
	TicketTypeName string           `json:"ticket_type_name"`
	AttendeeName   string           `json:"attendee_name"`
	AttendeeEmail  string           `json:"attendee_email"`
	AttendeePhone  string           `json:"attendee_phone,omitempty"`
	Quantity       int              `json:"quantity"`
	TotalPriceIDR  decimal.Decimal  `json:"total_price_idr"`
	TotalPriceUSD  decimal.Decimal  `json:"total_price_usd"`
	Currency       Currency         `json:"currency"`
	Discount       *AppliedDiscount `json:"discount,omitempty"`
	PaymentStatus  PaymentStatus    `json:"payment_status"`
	PaymentMethod  string           `json:"payment_method,omitempty"`
	PaymentRef     string           `json:"payment_ref,omitempty"`
	QRCode         string           `json:"qr_code"`
	ValidFrom      time.Time        `json:"valid_from"`
	ValidUntil     time.Time        `json:"valid_until"`
	IsUsed         bool             `json:"is_used"`
	UsedAt         *time.Time       `json:"used_at,omitempty"`
	EntryGate      string           `json:"entry_gate,omitempty"`
	RefundedAt     *time.Time       `json:"refunded_at,omitempty"`
}

// ChargedAmount returns the total in the currency that was charged.
func (p *TicketPurchase) ChargedAmount() decimal.Decimal {
	if p.Currency == CurrencyUSD {
		return p.TotalPriceUSD
	}
	return p.TotalPriceIDR
}

// IsPaid reports whether payment is confirmed.
func (p *TicketPurchase) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}

// IsWithinValidity reports whether now lies in [ValidFrom, ValidUntil].
func (p *TicketPurchase) IsWithinValidity(now time.Time) bool {
	return !now.Before(p.ValidFrom) && !now.After(p.ValidUntil)
}

// MarkAsPaid moves pending → paid.
func (p *TicketPurchase) MarkAsPaid(ref string) error {
	if p.PaymentStatus != PaymentStatusPending {
		return ErrInvalidStateTransition
	}
	p.PaymentStatus = PaymentStatusPaid
	p.PaymentRef = ref
	return nil
}

// MarkAsFailed moves pending → failed.
func (p *TicketPurchase) MarkAsFailed() error {
	if p.PaymentStatus != PaymentStatusPending {
		return ErrInvalidStateTransition
	}
	p.PaymentStatus = PaymentStatusFailed
	return nil
}

// CanRefund reports whether the purchase may be refunded. Used tickets
// cannot be refunded.
func (p *TicketPurchase) CanRefund() bool {
	return p.PaymentStatus == PaymentStatusPaid && !p.IsUsed
}

// MarkAsRefunded moves paid → refunded.
func (p *TicketPurchase) MarkAsRefunded(now time.Time) error {
	if !p.CanRefund() {
		return ErrInvalidStateTransition
	}
	p.PaymentStatus = PaymentStatusRefunded
	p.RefundedAt = &now
	p.Touch(now)
	return nil
}

// MarkAsUsed latches unused → used at gate.
func (p *TicketPurchase) MarkAsUsed(gateID string, now time.Time) error {
	if p.IsUsed {
		return ErrInvalidStateTransition
	}
	p.IsUsed = true
	p.UsedAt = &now
	p.EntryGate = gateID
	p.Touch(now)
	return nil
}

// Clone returns a deep copy of t.
func (t *TicketType) Clone() *TicketType {
	c := *t
	if t.Benefits != nil {
		c.Benefits = append([]string(nil), t.Benefits...)
	}
	if t.EarlyBird != nil {
		eb := *t.EarlyBird
		c.EarlyBird = &eb
	}
	return &c
}

// HoldsCapacity reports whether the purchase counts against its ticket
// type's capacity. Pending and paid purchases hold their tickets; failed
// and refunded ones have given them back.
func (p *TicketPurchase) HoldsCapacity() bool {
	return p.PaymentStatus == PaymentStatusPending || p.PaymentStatus == PaymentStatusPaid
}

// Clone returns a deep copy of p.
func (p *TicketPurchase) Clone() *TicketPurchase {
	c := *p
	if p.Discount != nil {
		d := *p.Discount
		c.Discount = &d
	}
	if p.UsedAt != nil {
		t := *p.UsedAt
		c.UsedAt = &t
	}
	if p.RefundedAt != nil {
		t := *p.RefundedAt
		c.RefundedAt = &t
	}
	return &c
}
