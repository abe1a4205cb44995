// -----------------------------------------------------------------------------
// Financial Transaction Model
// -----------------------------------------------------------------------------
// Ledger entries behind the financial dashboard. Transactions reference
// purchases only by a free-form Reference; no integrity is enforced between
// the two stores.
// -----------------------------------------------------------------------------

package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeFee        TransactionType = "fee"
	TransactionTypeCommission TransactionType = "commission"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeRefund, TransactionTypeFee, TransactionTypeCommission:
		return true
	}
	return false
}

// IsIncome reports whether the entry adds to revenue.
func (t TransactionType) IsIncome() bool {
	return t == TransactionTypePayment || t == TransactionTypeCommission
}

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is a financial ledger entry.
type Transaction struct {
	BaseModel
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    Currency          `json:"currency"`
	Description string            `json:"description"`
	Reference   string            `json:"reference,omitempty"`
	Status      TransactionStatus `json:"status"`
}
