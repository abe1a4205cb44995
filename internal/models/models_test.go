package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now        = time.Date(2026, time.November, 1, 12, 0, 0, 0, time.UTC)
	eventStart = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
)

func paidPurchase() *TicketPurchase {
	return &TicketPurchase{
		BaseModel:     BaseModel{ID: "PUR-1"},
		Quantity:      1,
		TotalPriceIDR: decimal.NewFromInt(85000),
		TotalPriceUSD: decimal.RequireFromString("5.50"),
		Currency:      CurrencyIDR,
		PaymentStatus: PaymentStatusPaid,
		ValidFrom:     eventStart,
		ValidUntil:    eventStart.AddDate(0, 0, 1).Add(23 * time.Hour),
	}
}

func TestPaymentStateMachine(t *testing.T) {
	p := paidPurchase()
	p.PaymentStatus = PaymentStatusPending

	require.NoError(t, p.MarkAsPaid("PAY-1"))
	assert.Equal(t, "PAY-1", p.PaymentRef)
	assert.ErrorIs(t, p.MarkAsPaid("PAY-2"), ErrInvalidStateTransition)
	assert.ErrorIs(t, p.MarkAsFailed(), ErrInvalidStateTransition)

	require.NoError(t, p.MarkAsRefunded(now))
	assert.Equal(t, PaymentStatusRefunded, p.PaymentStatus)
	assert.Equal(t, now, *p.RefundedAt)
	assert.False(t, p.HoldsCapacity())
	assert.ErrorIs(t, p.MarkAsRefunded(now), ErrInvalidStateTransition)

	failed := paidPurchase()
	failed.PaymentStatus = PaymentStatusPending
	assert.True(t, failed.HoldsCapacity())
	require.NoError(t, failed.MarkAsFailed())
	assert.False(t, failed.HoldsCapacity())
}

func TestUsedTicketCannotBeRefunded(t *testing.T) {
	p := paidPurchase()
	require.NoError(t, p.MarkAsUsed("gate-a", now))
	assert.Equal(t, "gate-a", p.EntryGate)
	assert.ErrorIs(t, p.MarkAsUsed("gate-b", now), ErrInvalidStateTransition)

	assert.False(t, p.CanRefund())
	assert.ErrorIs(t, p.MarkAsRefunded(now), ErrInvalidStateTransition)
}

func TestAdmissionCheck(t *testing.T) {
	pending := paidPurchase()
	pending.PaymentStatus = PaymentStatusPending

	used := paidPurchase()
	used.IsUsed = true

	tests := []struct {
		name     string
		purchase *TicketPurchase
		vt       ValidationType
		at       time.Time
		want     string
	}{
		{"entry ok", paidPurchase(), ValidationTypeEntry, now, ""},
		{"entry unpaid", pending, ValidationTypeEntry, now, ReasonNotPaid},
		{"entry twice", used, ValidationTypeEntry, now, ReasonAlreadyUsed},
		{"entry before window", paidPurchase(), ValidationTypeEntry, eventStart.Add(-time.Minute), ReasonOutsideWindow},
		{"entry at window end", paidPurchase(), ValidationTypeEntry, eventStart.AddDate(0, 0, 1).Add(23 * time.Hour), ""},
		{"exit before entry", paidPurchase(), ValidationTypeExit, now, ReasonNotEntered},
		{"exit after entry", used, ValidationTypeExit, now, ""},
		{"exit after window", used, ValidationTypeExit, now.AddDate(0, 0, 5), ""},
		{"area before entry", paidPurchase(), ValidationTypeAreaAccess, now, ReasonNotEntered},
		{"area after entry", used, ValidationTypeAreaAccess, now, ""},
		{"area after window", used, ValidationTypeAreaAccess, now.AddDate(0, 0, 5), ReasonOutsideWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.purchase.AdmissionCheck(tt.vt, tt.at))
		})
	}
}

func TestChargedAmount(t *testing.T) {
	p := paidPurchase()
	assert.True(t, p.ChargedAmount().Equal(decimal.NewFromInt(85000)))

	p.Currency = CurrencyUSD
	assert.True(t, p.ChargedAmount().Equal(decimal.RequireFromString("5.50")))
}

func TestTicketTypeCapacity(t *testing.T) {
	tt := &TicketType{MaxQuantity: 10, AvailableQuantity: 10}

	require.NoError(t, tt.Reserve(4))
	assert.Equal(t, 6, tt.AvailableQuantity)
	assert.ErrorIs(t, tt.Reserve(7), ErrSoldOut)
	assert.ErrorIs(t, tt.Reserve(0), ErrInvalidQuantity)

	tt.Release(20)
	assert.Equal(t, 10, tt.AvailableQuantity)
	assert.NoError(t, tt.CheckCapacity())

	tt.AvailableQuantity = 11
	assert.ErrorIs(t, tt.CheckCapacity(), ErrInvalidCapacity)

	tt.AvailableQuantity = 0
	assert.True(t, tt.IsSoldOut())
}

func TestEarlyBirdActive(t *testing.T) {
	eb := &EarlyBird{
		StartDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
	}

	assert.False(t, eb.Active(time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, eb.Active(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
	// the end date is inclusive for the whole day
	assert.True(t, eb.Active(time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)))
	assert.False(t, eb.Active(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)))

	var none *EarlyBird
	assert.False(t, none.Active(now))
}

func TestClonesAreIndependent(t *testing.T) {
	tt := &TicketType{Benefits: []string{"Entry"}, EarlyBird: &EarlyBird{PriceIDR: decimal.NewFromInt(1)}}
	c := tt.Clone()
	c.Benefits[0] = "Changed"
	c.EarlyBird.PriceIDR = decimal.NewFromInt(2)
	assert.Equal(t, "Entry", tt.Benefits[0])
	assert.True(t, tt.EarlyBird.PriceIDR.Equal(decimal.NewFromInt(1)))

	p := paidPurchase()
	require.NoError(t, p.MarkAsUsed("gate-a", now))
	pc := p.Clone()
	*pc.UsedAt = now.Add(time.Hour)
	assert.Equal(t, now, *p.UsedAt)
}

func TestAppError(t *testing.T) {
	wrapped := fmt.Errorf("purchase PUR-9: %w", ErrPurchaseNotFound)

	assert.True(t, errors.Is(wrapped, ErrPurchaseNotFound))
	assert.False(t, errors.Is(wrapped, ErrStaffNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))

	v := NewValidationError("email: is required", map[string][]string{"email": {"is required"}})
	assert.True(t, errors.Is(v, ErrValidationFailed))
	assert.Equal(t, KindInvalid, KindOf(v))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, CurrencyUSD.Valid())
	assert.False(t, Currency("JPY").Valid())
	assert.True(t, TicketCategoryVIP.Valid())
	assert.False(t, TicketCategory("vvip").Valid())
	assert.True(t, ValidationTypeAreaAccess.Valid())
	assert.False(t, ValidationType("lounge").Valid())
	assert.True(t, CircleStatusWaitlist.Valid())
	assert.True(t, StaffRoleCoordinator.Valid())
	assert.False(t, StaffRole("janitor").Valid())
	assert.True(t, TransactionTypeCommission.IsIncome())
	assert.False(t, TransactionTypeFee.IsIncome())
}
