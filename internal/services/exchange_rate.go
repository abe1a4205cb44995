package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/shopspring/decimal"
)

// RateSource provides the current USD → IDR rate.
type RateSource interface {
	USDToIDR(ctx context.Context) (decimal.Decimal, error)
}

// FixedRateSource always returns Rate. It backs the configured display rate.
type FixedRateSource struct {
	Rate decimal.Decimal
}

func (s FixedRateSource) USDToIDR(ctx context.Context) (decimal.Decimal, error) {
	return s.Rate, nil
}

// ExchangeRates holds the display rate used to show IDR prices in USD and back.
// Ticket prices themselves are stored in both currencies and never converted.
type ExchangeRates struct {
	mu        sync.RWMutex
	source    RateSource
	usdToIDR  decimal.Decimal
	updatedAt time.Time
	logger    *log.Logger
}

func NewExchangeRates(source RateSource, initial decimal.Decimal, logger *log.Logger) *ExchangeRates {
	return &ExchangeRates{
		source:   source,
		usdToIDR: initial,
		logger:   logger,
	}
}

// Refresh pulls a new rate from the source. The previous rate stays in use
// when the source fails or returns a non-positive rate.
func (r *ExchangeRates) Refresh(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	rate, err := r.source.USDToIDR(ctx)
	if err != nil {
		r.logger.Printf("⚠️  Exchange rate refresh failed, keeping previous rate: %v", err)
		return r.Rate(), fmt.Errorf("failed to refresh exchange rate: %w", err)
	}
	if !rate.IsPositive() {
		return r.Rate(), fmt.Errorf("exchange rate must be positive, got %s", rate)
	}

	r.mu.Lock()
	r.usdToIDR = rate
	r.updatedAt = now
	r.mu.Unlock()

	return rate, nil
}

// Rate returns the current USD → IDR rate.
func (r *ExchangeRates) Rate() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usdToIDR
}

// UpdatedAt returns when the rate was last refreshed.
func (r *ExchangeRates) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

// Convert converts amount between the two currencies, rounding IDR to whole
// units and USD to cents.
func (r *ExchangeRates) Convert(amount decimal.Decimal, from, to models.Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	rate := r.Rate()
	if to == models.CurrencyIDR {
		return amount.Mul(rate).Round(0)
	}
	if rate.IsZero() {
		return decimal.Zero
	}
	return amount.Div(rate).Round(2)
}
