package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/token"
	"github.com/shopspring/decimal"
)

// TransactionIDPrefix prefixes every ledger entry id.
const TransactionIDPrefix = "TRX"

// TransactionInput records a manual ledger entry (fees, commissions,
// corrections) from the financial dashboard.
type TransactionInput struct {
	Type        models.TransactionType   `json:"type" validate:"required,oneof=payment refund fee commission"`
	Amount      decimal.Decimal          `json:"amount"`
	Currency    models.Currency          `json:"currency" validate:"required,oneof=IDR USD"`
	Description string                   `json:"description" validate:"notblank,max=500"`
	Reference   string                   `json:"reference,omitempty" validate:"max=120"`
	Status      models.TransactionStatus `json:"status,omitempty" validate:"omitempty,oneof=pending completed failed"`
}

// CurrencySummary totals completed transactions of one currency. Payments
// and commissions are income; refunds and fees are expenses.
type CurrencySummary struct {
	Currency     models.Currency `json:"currency"`
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Net          decimal.Decimal `json:"net"`
	Transactions int             `json:"transactions"`
}

// FinancialSummary is the dashboard summary.
type FinancialSummary struct {
	ByCurrency []*CurrencySummary `json:"by_currency"`
	Pending    int                `json:"pending"`
}

// ForCurrency returns the summary of currency, or nil.
func (s *FinancialSummary) ForCurrency(currency models.Currency) *CurrencySummary {
	for _, c := range s.ByCurrency {
		if c.Currency == currency {
			return c
		}
	}
	return nil
}

// FinanceService is the financial ledger.
type FinanceService struct {
	repo       *repositories.TransactionRepository
	dispatcher *events.Dispatcher
	logger     *log.Logger
	now        func() time.Time
}

func NewFinanceService(repo *repositories.TransactionRepository, dispatcher *events.Dispatcher, logger *log.Logger) *FinanceService {
	return &FinanceService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Record validates input and appends it to the ledger.
func (s *FinanceService) Record(ctx context.Context, input *TransactionInput) (*models.Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Type:        input.Type,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: strings.TrimSpace(input.Description),
		Reference:   input.Reference,
		Status:      input.Status,
	}
	if err := s.RecordTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordTransaction assigns id and timestamps to tx and appends it. Amounts
// are positive; the type decides the direction.
func (s *FinanceService) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !tx.Type.Valid() {
		return models.NewValidationError("type: is invalid", map[string][]string{"type": {"is invalid"}})
	}
	if !tx.Currency.Valid() {
		return models.NewValidationError("currency: is invalid", map[string][]string{"currency": {"is invalid"}})
	}
	if !tx.Amount.IsPositive() {
		return models.NewValidationError("amount: must be greater than 0",
			map[string][]string{"amount": {"must be greater than 0"}})
	}
	if tx.Status == "" {
		tx.Status = models.TransactionStatusCompleted
	}

	now := s.now()
	id, err := token.GenerateID(TransactionIDPrefix, now)
	if err != nil {
		return fmt.Errorf("failed to generate transaction id: %w", err)
	}
	tx.ID = id
	tx.Initialize(now)

	if err := s.repo.Create(tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	s.logger.Printf("✅ Transaction %s recorded: %s %s %s", tx.ID, tx.Type, tx.Amount.String(), tx.Currency)

	if s.dispatcher != nil {
		recorded := *tx
		if err := s.dispatcher.Dispatch(events.NewBaseEvent(events.EventTransactionRecorded, &recorded)); err != nil {
			s.logger.Printf("⚠️  Listener failed for %s: %v", events.EventTransactionRecorded, err)
		}
	}
	return nil
}

func (s *FinanceService) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}
	return tx, nil
}

// List returns the ledger, filtered by type when txType is set.
func (s *FinanceService) List(ctx context.Context, txType models.TransactionType) ([]*models.Transaction, error) {
	if txType != "" && !txType.Valid() {
		return nil, models.NewValidationError("type: is invalid", map[string][]string{"type": {"is invalid"}})
	}
	return s.repo.List(txType), nil
}

// Summary totals completed transactions per currency.
func (s *FinanceService) Summary(ctx context.Context) *FinancialSummary {
	byCurrency := make(map[models.Currency]*CurrencySummary)
	summary := &FinancialSummary{}

	for _, tx := range s.repo.List("") {
		if tx.Status == models.TransactionStatusPending {
			summary.Pending++
		}
		if tx.Status != models.TransactionStatusCompleted {
			continue
		}

		c, ok := byCurrency[tx.Currency]
		if !ok {
			c = &CurrencySummary{
				Currency: tx.Currency,
				Income:   decimal.Zero,
				Expenses: decimal.Zero,
				Net:      decimal.Zero,
			}
			byCurrency[tx.Currency] = c
		}

		c.Transactions++
		if tx.Type.IsIncome() {
			c.Income = c.Income.Add(tx.Amount)
		} else {
			c.Expenses = c.Expenses.Add(tx.Amount)
		}
		c.Net = c.Income.Sub(c.Expenses)
	}

	summary.ByCurrency = make([]*CurrencySummary, 0, len(byCurrency))
	for _, c := range byCurrency {
		summary.ByCurrency = append(summary.ByCurrency, c)
	}
	sort.Slice(summary.ByCurrency, func(i, j int) bool {
		return summary.ByCurrency[i].Currency < summary.ByCurrency[j].Currency
	})
	return summary
}
