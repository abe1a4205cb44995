// -----------------------------------------------------------------------------
// Ticket Price Calculator
// -----------------------------------------------------------------------------
// Quotes a (ticket type, quantity, discount flags) triple in both currencies.
//
//  1. Unit price: early bird when active, standard otherwise.
//  2. Subtotal per currency: unit price × quantity.
//  3. Discount: single best applicable rule, never stacked.
//  4. Rounding: IDR to whole units, USD to 2 decimals.
//
// The purchase total stored on a TicketPurchase must equal the quote's
// PriceIDR / PriceUSD at creation time.
// -----------------------------------------------------------------------------

package strategy

import (
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/shopspring/decimal"
)

// Rounding places per currency.
const (
	idrPlaces int32 = 0
	usdPlaces int32 = 2
)

var hundred = decimal.NewFromInt(100)

// PriceQuote is the output of the calculator.
type PriceQuote struct {
	TicketTypeID string                  `json:"ticket_type_id"`
	Quantity     int                     `json:"quantity"`
	UnitPriceIDR decimal.Decimal         `json:"unit_price_idr"`
	UnitPriceUSD decimal.Decimal         `json:"unit_price_usd"`
	SubtotalIDR  decimal.Decimal         `json:"subtotal_idr"`
	SubtotalUSD  decimal.Decimal         `json:"subtotal_usd"`
	PriceIDR     decimal.Decimal         `json:"price_idr"`
	PriceUSD     decimal.Decimal         `json:"price_usd"`
	EarlyBird    bool                    `json:"early_bird"`
	Discount     *models.AppliedDiscount `json:"discount,omitempty"`
}

// Price returns the final price in currency.
func (q *PriceQuote) Price(currency models.Currency) decimal.Decimal {
	if currency == models.CurrencyUSD {
		return q.PriceUSD
	}
	return q.PriceIDR
}

// Calculator computes ticket prices.
type Calculator struct {
	basePrice *EarlyBirdPricingStrategy
	discounts *BestDiscountStrategy
}

// NewCalculator creates a calculator with the default discount rules.
func NewCalculator() *Calculator {
	return NewCalculatorWithDiscounts(NewPricingStrategyFactory().CreateDefaultDiscounts())
}

// NewCalculatorWithDiscounts creates a calculator with custom discount rules.
func NewCalculatorWithDiscounts(discounts *BestDiscountStrategy) *Calculator {
	return &Calculator{
		basePrice: &EarlyBirdPricingStrategy{},
		discounts: discounts,
	}
}

// CalculateTicketPrice quotes quantity tickets of ticketType. The discount
// amount is reported in displayCurrency.
func (c *Calculator) CalculateTicketPrice(
	ticketType *models.TicketType,
	quantity int,
	flags DiscountFlags,
	displayCurrency models.Currency,
	now time.Time,
) (*PriceQuote, error) {
	if ticketType == nil {
		return nil, models.ErrTicketTypeNotFound
	}
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if !displayCurrency.Valid() {
		displayCurrency = models.CurrencyIDR
	}

	unitIDR, unitUSD, earlyBird := c.basePrice.UnitPrice(ticketType, now)
	qty := decimal.NewFromInt(int64(quantity))
	subtotalIDR := unitIDR.Mul(qty)
	subtotalUSD := unitUSD.Mul(qty)

	quote := &PriceQuote{
		TicketTypeID: ticketType.ID,
		Quantity:     quantity,
		UnitPriceIDR: unitIDR,
		UnitPriceUSD: unitUSD,
		SubtotalIDR:  subtotalIDR,
		SubtotalUSD:  subtotalUSD,
		PriceIDR:     subtotalIDR.Round(idrPlaces),
		PriceUSD:     subtotalUSD.Round(usdPlaces),
		EarlyBird:    earlyBird,
	}

	best, percent := c.discounts.Select(&DiscountContext{Quantity: quantity, Flags: flags})
	if best == nil {
		return quote, nil
	}

	rate := decimal.NewFromInt(int64(percent)).Div(hundred)
	discountIDR := subtotalIDR.Mul(rate)
	discountUSD := subtotalUSD.Mul(rate)
	quote.PriceIDR = subtotalIDR.Sub(discountIDR).Round(idrPlaces)
	quote.PriceUSD = subtotalUSD.Sub(discountUSD).Round(usdPlaces)

	amount := discountIDR.Round(idrPlaces)
	if displayCurrency == models.CurrencyUSD {
		amount = discountUSD.Round(usdPlaces)
	}
	quote.Discount = &models.AppliedDiscount{
		Type:       best.Type(),
		Amount:     amount,
		Currency:   displayCurrency,
		Percentage: percent,
	}

	return quote, nil
}
