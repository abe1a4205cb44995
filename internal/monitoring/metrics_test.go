package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.TrackPurchase("vip-pass", "paid", 5)
	m.TrackPurchase("vip-pass", "paid", 2)
	m.TrackPurchase("day-1", "pending", 1)
	m.TrackValidation("entry", true)
	m.TrackValidation("entry", false)
	m.TrackValidation("entry", false)
	m.TrackPaymentFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.purchases.WithLabelValues("vip-pass", "paid")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ticketsSold.WithLabelValues("vip-pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("entry", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("entry", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentFailures))
}

func TestMetrics_Gauges(t *testing.T) {
	m := NewMetrics()

	m.SetRevenue("IDR", decimal.NewFromInt(1200000))
	m.SetRevenue("USD", decimal.RequireFromString("80.50"))
	m.SetTicketsAvailable("vip-pass", 195)
	m.SetExchangeRate(decimal.NewFromInt(15500))

	assert.Equal(t, 1200000.0, testutil.ToFloat64(m.revenue.WithLabelValues("IDR")))
	assert.Equal(t, 80.5, testutil.ToFloat64(m.revenue.WithLabelValues("USD")))
	assert.Equal(t, 195.0, testutil.ToFloat64(m.ticketsAvailable.WithLabelValues("vip-pass")))
	assert.Equal(t, 15500.0, testutil.ToFloat64(m.exchangeRate))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.ObserveRequest("GET", "/api/tickets", 200, 15*time.Millisecond)

	families, err := first.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, family := range families {
		if family.GetName() == "doujindesk_http_request_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, 0, testutil.CollectAndCount(second.requestDuration))
}
