package strategy

import (
	"testing"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)

func vipPass() *models.TicketType {
	return &models.TicketType{
		BaseModel:         models.BaseModel{ID: "vip-pass"},
		Name:              "VIP Pass",
		PriceIDR:          decimal.NewFromInt(300000),
		PriceUSD:          decimal.RequireFromString("20.00"),
		Category:          models.TicketCategoryVIP,
		MaxQuantity:       100,
		AvailableQuantity: 100,
		IsActive:          true,
	}
}

func TestCalculateTicketPrice_NoDiscount(t *testing.T) {
	calc := NewCalculator()

	for _, qty := range []int{1, 2, 3, 4} {
		quote, err := calc.CalculateTicketPrice(vipPass(), qty, DiscountFlags{}, models.CurrencyIDR, now)
		require.NoError(t, err)

		expected := decimal.NewFromInt(300000 * int64(qty))
		assert.True(t, expected.Equal(quote.PriceIDR), "qty %d: got %s", qty, quote.PriceIDR)
		assert.Nil(t, quote.Discount)
		assert.False(t, quote.EarlyBird)
	}
}

func TestCalculateTicketPrice_PWDBeatsBulk(t *testing.T) {
	calc := NewCalculator()

	quote, err := calc.CalculateTicketPrice(vipPass(), 5, DiscountFlags{IsPWD: true}, models.CurrencyIDR, now)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1200000).Equal(quote.PriceIDR), "got %s", quote.PriceIDR)
	assert.True(t, decimal.RequireFromString("80").Equal(quote.PriceUSD), "got %s", quote.PriceUSD)
	require.NotNil(t, quote.Discount)
	assert.Equal(t, models.DiscountTypePWD, quote.Discount.Type)
	assert.Equal(t, 20, quote.Discount.Percentage)
	assert.True(t, decimal.NewFromInt(300000).Equal(quote.Discount.Amount))
	assert.Equal(t, models.CurrencyIDR, quote.Discount.Currency)
}

func TestCalculateTicketPrice_ChildBeatsPWD(t *testing.T) {
	calc := NewCalculator()

	quote, err := calc.CalculateTicketPrice(vipPass(), 1, DiscountFlags{IsPWD: true, IsChild: true, Age: age(8)}, models.CurrencyUSD, now)
	require.NoError(t, err)

	require.NotNil(t, quote.Discount)
	assert.Equal(t, models.DiscountTypeChild, quote.Discount.Type)
	assert.Equal(t, 50, quote.Discount.Percentage)
	assert.True(t, decimal.NewFromInt(150000).Equal(quote.PriceIDR))
	assert.True(t, decimal.RequireFromString("10").Equal(quote.Discount.Amount))
	assert.Equal(t, models.CurrencyUSD, quote.Discount.Currency)
}

func TestCalculateTicketPrice_ChildRequiresAgeUnder12(t *testing.T) {
	calc := NewCalculator()

	quote, err := calc.CalculateTicketPrice(vipPass(), 1, DiscountFlags{IsChild: true, Age: age(12)}, models.CurrencyIDR, now)
	require.NoError(t, err)
	assert.Nil(t, quote.Discount)

	quote, err = calc.CalculateTicketPrice(vipPass(), 1, DiscountFlags{Age: age(5)}, models.CurrencyIDR, now)
	require.NoError(t, err)
	assert.Nil(t, quote.Discount)

	// a child flag with no stated age gets nothing
	quote, err = calc.CalculateTicketPrice(vipPass(), 1, DiscountFlags{IsChild: true}, models.CurrencyIDR, now)
	require.NoError(t, err)
	assert.Nil(t, quote.Discount)
}

func age(years int) *int {
	return &years
}

func TestCalculateTicketPrice_BulkOnly(t *testing.T) {
	calc := NewCalculator()

	quote, err := calc.CalculateTicketPrice(vipPass(), 6, DiscountFlags{}, models.CurrencyIDR, now)
	require.NoError(t, err)

	require.NotNil(t, quote.Discount)
	assert.Equal(t, models.DiscountTypeBulk, quote.Discount.Type)
	assert.True(t, decimal.NewFromInt(1620000).Equal(quote.PriceIDR))
}

func TestCalculateTicketPrice_TieBreakPrefersEarlierStrategy(t *testing.T) {
	f := NewPricingStrategyFactory()
	calc := NewCalculatorWithDiscounts(f.CreateBestDiscountStrategy(
		f.CreatePWDStrategy(10),
		f.CreateChildStrategy(12, 10),
		f.CreateGroupStrategy(5, 10),
	))

	quote, err := calc.CalculateTicketPrice(vipPass(), 5, DiscountFlags{IsPWD: true, IsChild: true, Age: age(3)}, models.CurrencyIDR, now)
	require.NoError(t, err)
	require.NotNil(t, quote.Discount)
	assert.Equal(t, models.DiscountTypePWD, quote.Discount.Type)

	quote, err = calc.CalculateTicketPrice(vipPass(), 5, DiscountFlags{IsChild: true, Age: age(3)}, models.CurrencyIDR, now)
	require.NoError(t, err)
	require.NotNil(t, quote.Discount)
	assert.Equal(t, models.DiscountTypeChild, quote.Discount.Type)
}

func TestCalculateTicketPrice_EarlyBirdWindow(t *testing.T) {
	calc := NewCalculator()
	tt := vipPass()
	tt.EarlyBird = &models.EarlyBird{
		PriceIDR:  decimal.NewFromInt(250000),
		PriceUSD:  decimal.RequireFromString("16.50"),
		StartDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
	}

	// end date is inclusive
	quote, err := calc.CalculateTicketPrice(tt, 2, DiscountFlags{}, models.CurrencyIDR, now)
	require.NoError(t, err)
	assert.True(t, quote.EarlyBird)
	assert.True(t, decimal.NewFromInt(500000).Equal(quote.PriceIDR))
	assert.True(t, decimal.RequireFromString("33").Equal(quote.PriceUSD))

	quote, err = calc.CalculateTicketPrice(tt, 2, DiscountFlags{}, models.CurrencyIDR, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, quote.EarlyBird)
	assert.True(t, decimal.NewFromInt(600000).Equal(quote.PriceIDR))

	quote, err = calc.CalculateTicketPrice(tt, 2, DiscountFlags{}, models.CurrencyIDR, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, quote.EarlyBird)
}

func TestCalculateTicketPrice_Rounding(t *testing.T) {
	calc := NewCalculator()
	tt := vipPass()
	tt.PriceIDR = decimal.NewFromInt(33333)
	tt.PriceUSD = decimal.RequireFromString("2.33")

	quote, err := calc.CalculateTicketPrice(tt, 1, DiscountFlags{IsPWD: true}, models.CurrencyUSD, now)
	require.NoError(t, err)

	// 33333 * 0.8 = 26666.4, 2.33 * 0.8 = 1.864
	assert.Equal(t, "26666", quote.PriceIDR.String())
	assert.Equal(t, "1.86", quote.PriceUSD.String())
}

func TestCalculateTicketPrice_Errors(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.CalculateTicketPrice(nil, 1, DiscountFlags{}, models.CurrencyIDR, now)
	assert.True(t, models.IsNotFound(err))

	_, err = calc.CalculateTicketPrice(vipPass(), 0, DiscountFlags{}, models.CurrencyIDR, now)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}
