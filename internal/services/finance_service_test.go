package services

import (
	"context"
	"testing"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinanceService(t *testing.T) (*FinanceService, *events.Dispatcher) {
	t.Helper()
	dispatcher := events.NewDispatcher(discardLogger())
	t.Cleanup(dispatcher.Shutdown)

	s := NewFinanceService(repositories.NewTransactionRepository(repositories.NopPersister{}, discardLogger()), dispatcher, discardLogger())
	s.now = fixedClock(testNow)
	return s, dispatcher
}

func TestFinance_Record(t *testing.T) {
	s, dispatcher := newFinanceService(t)

	var recorded *models.Transaction
	dispatcher.Listen(events.EventTransactionRecorded, events.ListenerFunc(func(e events.Event) error {
		recorded = e.Payload().(*models.Transaction)
		return nil
	}))

	tx, err := s.Record(context.Background(), &TransactionInput{
		Type:        models.TransactionTypeFee,
		Amount:      decimal.NewFromInt(2500000),
		Currency:    models.CurrencyIDR,
		Description: " Hall rental deposit ",
	})
	require.NoError(t, err)

	assert.Contains(t, tx.ID, TransactionIDPrefix+"-")
	assert.Equal(t, "Hall rental deposit", tx.Description)
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, testNow, tx.CreatedAt)

	require.NotNil(t, recorded)
	assert.Equal(t, tx.ID, recorded.ID)

	found, err := s.FindByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.Description, found.Description)
}

func TestFinance_RecordRejectsBadInput(t *testing.T) {
	s, _ := newFinanceService(t)
	ctx := context.Background()

	_, err := s.Record(ctx, &TransactionInput{
		Type: "bribe", Amount: decimal.NewFromInt(1), Currency: models.CurrencyIDR, Description: "x",
	})
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	_, err = s.Record(ctx, &TransactionInput{
		Type: models.TransactionTypeFee, Amount: decimal.Zero, Currency: models.CurrencyIDR, Description: "x",
	})
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	_, err = s.Record(ctx, &TransactionInput{
		Type: models.TransactionTypeFee, Amount: decimal.NewFromInt(1), Currency: "JPY", Description: "x",
	})
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	_, err = s.List(ctx, "bribe")
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	_, err = s.FindByID(ctx, "TRX-missing")
	assert.True(t, models.IsNotFound(err))
}

func TestFinance_Summary(t *testing.T) {
	s, _ := newFinanceService(t)
	ctx := context.Background()

	record := func(txType models.TransactionType, amount string, currency models.Currency, status models.TransactionStatus) {
		t.Helper()
		_, err := s.Record(ctx, &TransactionInput{
			Type:        txType,
			Amount:      decimal.RequireFromString(amount),
			Currency:    currency,
			Description: "entry",
			Status:      status,
		})
		require.NoError(t, err)
	}

	record(models.TransactionTypePayment, "300000", models.CurrencyIDR, "")
	record(models.TransactionTypeCommission, "50000", models.CurrencyIDR, "")
	record(models.TransactionTypeRefund, "85000", models.CurrencyIDR, "")
	record(models.TransactionTypeFee, "15000", models.CurrencyIDR, models.TransactionStatusPending)
	record(models.TransactionTypePayment, "20.00", models.CurrencyUSD, "")
	record(models.TransactionTypeFee, "1.25", models.CurrencyUSD, "")

	summary := s.Summary(ctx)
	require.Len(t, summary.ByCurrency, 2)
	assert.Equal(t, 1, summary.Pending)

	idr := summary.ForCurrency(models.CurrencyIDR)
	assert.True(t, idr.Income.Equal(decimal.NewFromInt(350000)))
	assert.True(t, idr.Expenses.Equal(decimal.NewFromInt(85000)))
	assert.True(t, idr.Net.Equal(decimal.NewFromInt(265000)))
	assert.Equal(t, 3, idr.Transactions)

	usd := summary.ForCurrency(models.CurrencyUSD)
	assert.True(t, usd.Net.Equal(decimal.RequireFromString("18.75")))

	fees, err := s.List(ctx, models.TransactionTypeFee)
	require.NoError(t, err)
	assert.Len(t, fees, 2)
}
