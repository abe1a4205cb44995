package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the DoujinDesk collectors. Each instance registers on its own
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	purchases        *prometheus.CounterVec
	ticketsSold      *prometheus.CounterVec
	paymentFailures  prometheus.Counter
	refunds          *prometheus.CounterVec
	validations      *prometheus.CounterVec
	revenue          *prometheus.GaugeVec
	ticketsAvailable *prometheus.GaugeVec
	exchangeRate     prometheus.Gauge
	circles          *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry that also carries the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		purchases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doujindesk_purchases_total",
				Help: "Ticket purchases by ticket type and payment status",
			},
			[]string{"ticket_type", "status"},
		),

		ticketsSold: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doujindesk_tickets_sold_total",
				Help: "Individual tickets sold by ticket type",
			},
			[]string{"ticket_type"},
		),

		paymentFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "doujindesk_payment_failures_total",
				Help: "Declined or failed payments",
			},
		),

		refunds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doujindesk_refunds_total",
				Help: "Refunded purchases by ticket type",
			},
			[]string{"ticket_type"},
		),

		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doujindesk_validations_total",
				Help: "Gate scans by scan type and outcome",
			},
			[]string{"validation_type", "valid"},
		),

		revenue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "doujindesk_revenue",
				Help: "Revenue of paid purchases per currency",
			},
			[]string{"currency"},
		),

		ticketsAvailable: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "doujindesk_tickets_available",
				Help: "Remaining capacity per ticket type",
			},
			[]string{"ticket_type"},
		),

		exchangeRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "doujindesk_usd_idr_rate",
				Help: "USD to IDR display rate",
			},
		),

		circles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doujindesk_circle_applications_total",
				Help: "Circle applications by status change",
			},
			[]string{"status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "doujindesk_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Registry returns the registry to expose on /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackPurchase counts a recorded purchase.
func (m *Metrics) TrackPurchase(ticketType, status string, quantity int) {
	m.purchases.WithLabelValues(ticketType, status).Inc()
	m.ticketsSold.WithLabelValues(ticketType).Add(float64(quantity))
}

// TrackPaymentFailure counts a declined or failed payment.
func (m *Metrics) TrackPaymentFailure() {
	m.paymentFailures.Inc()
}

// TrackRefund counts a refund.
func (m *Metrics) TrackRefund(ticketType string) {
	m.refunds.WithLabelValues(ticketType).Inc()
}

// TrackValidation counts a gate scan.
func (m *Metrics) TrackValidation(validationType string, valid bool) {
	m.validations.WithLabelValues(validationType, strconv.FormatBool(valid)).Inc()
}

// SetRevenue publishes the revenue total of currency.
func (m *Metrics) SetRevenue(currency string, amount decimal.Decimal) {
	m.revenue.WithLabelValues(currency).Set(amount.InexactFloat64())
}

// SetTicketsAvailable publishes the remaining capacity of a ticket type.
func (m *Metrics) SetTicketsAvailable(ticketType string, available int) {
	m.ticketsAvailable.WithLabelValues(ticketType).Set(float64(available))
}

// SetExchangeRate publishes the USD/IDR display rate.
func (m *Metrics) SetExchangeRate(rate decimal.Decimal) {
	m.exchangeRate.Set(rate.InexactFloat64())
}

// TrackCircle counts a circle submission or review outcome.
func (m *Metrics) TrackCircle(status string) {
	m.circles.WithLabelValues(status).Inc()
}

// ObserveRequest records an HTTP request duration.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
