// -----------------------------------------------------------------------------
// Payment Processing
// -----------------------------------------------------------------------------
// Purchases are charged through a PaymentProcessor. The convention box office
// has no gateway integration, so the default processor simulates one:
//
//	card, e-wallet, cash → settled immediately (paid)
//	bank_transfer        → awaiting manual confirmation (pending)
//	declined methods     → ErrPaymentDeclined, no purchase is recorded
// -----------------------------------------------------------------------------

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/pkg/token"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard         = "card"
	PaymentMethodEWallet      = "ewallet"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
)

// PaymentRequest is one charge attempt.
type PaymentRequest struct {
	PurchaseID    string
	Amount        decimal.Decimal
	Currency      models.Currency
	Method        string
	AttendeeEmail string
}

// PaymentResult is the processor outcome of an accepted charge.
type PaymentResult struct {
	Status    models.PaymentStatus
	Reference string
}

// PaymentProcessor charges purchases.
type PaymentProcessor interface {
	Charge(ctx context.Context, req *PaymentRequest) (*PaymentResult, error)
}

// SimulatedPaymentProcessor settles card, e-wallet and cash payments at once
// and leaves bank transfers pending. Methods in Decline are refused.
type SimulatedPaymentProcessor struct {
	Decline map[string]bool
	now     func() time.Time
}

func NewSimulatedPaymentProcessor() *SimulatedPaymentProcessor {
	return &SimulatedPaymentProcessor{
		Decline: make(map[string]bool),
		now:     time.Now,
	}
}

func (p *SimulatedPaymentProcessor) Charge(ctx context.Context, req *PaymentRequest) (*PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Decline[req.Method] {
		return nil, models.ErrPaymentDeclined
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount", models.ErrPaymentDeclined)
	}

	ref, err := token.GenerateID("PAY", p.now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment reference: %w", err)
	}

	if req.Method == PaymentMethodBankTransfer {
		return &PaymentResult{Status: models.PaymentStatusPending, Reference: ref}, nil
	}
	return &PaymentResult{Status: models.PaymentStatusPaid, Reference: ref}, nil
}
