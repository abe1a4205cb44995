// -----------------------------------------------------------------------------
// Scheduler
// -----------------------------------------------------------------------------
// Background jobs on gocron:
//
//	sales-recompute       rebuilds the sales summary from the purchase ledger
//	exchange-rate-refresh pulls the USD/IDR display rate
// -----------------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/monitoring"
	"github.com/doujindesk/doujindesk-api/internal/services"
	"github.com/go-co-op/gocron/v2"
)

const refreshTimeout = 10 * time.Second

// SalesRecomputer rebuilds the sales summary.
type SalesRecomputer interface {
	RecomputeSales() *services.SalesStats
}

// Options sets the job intervals.
type Options struct {
	SalesInterval        time.Duration
	ExchangeRateInterval time.Duration
	Location             *time.Location
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	cron    gocron.Scheduler
	sales   SalesRecomputer
	rates   *services.ExchangeRates
	metrics *monitoring.Metrics
	logger  *log.Logger
}

// New registers the jobs without starting them. rates and metrics may be nil.
func New(opts Options, sales SalesRecomputer, rates *services.ExchangeRates, metrics *monitoring.Metrics, logger *log.Logger) (*Scheduler, error) {
	location := opts.Location
	if location == nil {
		location = time.UTC
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		cron:    cron,
		sales:   sales,
		rates:   rates,
		metrics: metrics,
		logger:  logger,
	}

	if _, err := cron.NewJob(
		gocron.DurationJob(opts.SalesInterval),
		gocron.NewTask(s.RecomputeSales),
		gocron.WithName("sales-recompute"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("failed to schedule sales recompute: %w", err)
	}

	if rates != nil {
		if _, err := cron.NewJob(
			gocron.DurationJob(opts.ExchangeRateInterval),
			gocron.NewTask(s.RefreshExchangeRate),
			gocron.WithName("exchange-rate-refresh"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		); err != nil {
			return nil, fmt.Errorf("failed to schedule exchange rate refresh: %w", err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Printf("✅ Scheduler started (%d jobs)", len(s.cron.Jobs()))
}

// Shutdown stops the jobs and waits for running ones.
func (s *Scheduler) Shutdown() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	s.logger.Println("✅ Scheduler stopped")
	return nil
}

// JobNames lists the registered jobs.
func (s *Scheduler) JobNames() []string {
	names := []string{}
	for _, job := range s.cron.Jobs() {
		names = append(names, job.Name())
	}
	return names
}

// RecomputeSales is the sales-recompute task.
func (s *Scheduler) RecomputeSales() {
	stats := s.sales.RecomputeSales()
	s.logger.Printf("🔄 Sales recomputed: %d tickets, IDR %s, USD %s",
		stats.TotalTickets, stats.TotalRevenueIDR.String(), stats.TotalRevenueUSD.String())
}

// RefreshExchangeRate is the exchange-rate-refresh task. A failed refresh
// keeps the previous rate.
func (s *Scheduler) RefreshExchangeRate() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	rate, err := s.rates.Refresh(ctx, time.Now())
	if err != nil {
		s.logger.Printf("⚠️  Exchange rate refresh failed: %v", err)
		return
	}

	if s.metrics != nil {
		s.metrics.SetExchangeRate(rate)
	}
	s.logger.Printf("🔄 USD/IDR rate refreshed: %s", rate.String())
}
