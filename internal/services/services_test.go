package services

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/monitoring"
	"github.com/doujindesk/doujindesk-api/internal/notification"
	"github.com/doujindesk/doujindesk-api/internal/patterns/factory"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/cache"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)
	eventStart = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fixture struct {
	store      *repositories.TicketStore
	tickets    *TicketService
	finance    *FinanceService
	payments   *SimulatedPaymentProcessor
	dispatcher *events.Dispatcher
	metrics    *monitoring.Metrics
}

// newFixture wires the ticket and finance services the way main does, with
// the event window open at testNow so scans are inside validity.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := discardLogger()

	store := repositories.NewTicketStore(repositories.NopPersister{}, logger)
	require.NoError(t, store.Restore(repositories.DefaultTicketTypes(eventStart, testNow)))

	dispatcher := events.NewDispatcher(logger)
	t.Cleanup(dispatcher.Shutdown)

	metrics := monitoring.NewMetrics()
	finance := NewFinanceService(repositories.NewTransactionRepository(repositories.NopPersister{}, logger), dispatcher, logger)
	finance.now = fixedClock(testNow)
	notification.Register(dispatcher, logger, finance, metrics)

	ticketFactory := factory.NewTicketFactory(factory.EventWindow{
		EventID: "doujin-2026",
		Start:   testNow.Add(-time.Hour),
		End:     eventStart.AddDate(0, 0, 2),
	})
	payments := NewSimulatedPaymentProcessor()

	tickets := NewTicketService(store, ticketFactory, payments, dispatcher, metrics, logger)
	tickets.now = fixedClock(testNow)

	return &fixture{
		store:      store,
		tickets:    tickets,
		finance:    finance,
		payments:   payments,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

// newCachedStore backs a ticket store with the in-memory cache persister.
func newCachedStore(t *testing.T) *repositories.TicketStore {
	t.Helper()
	persister := repositories.NewCachePersister(cache.NewMemoryCache(discardLogger()), discardLogger())
	store := repositories.NewTicketStore(persister, discardLogger())
	require.NoError(t, store.Restore(repositories.DefaultTicketTypes(eventStart, testNow)))
	return store
}

func ageOf(years int) *int {
	return &years
}

func purchaseInput(typeID string, qty int, method string) *PurchaseInput {
	return &PurchaseInput{
		TicketTypeID:  typeID,
		Quantity:      qty,
		AttendeeName:  "Sakura Tanaka",
		AttendeeEmail: "sakura@example.com",
		AttendeePhone: "+62 812 3456 7890",
		PaymentMethod: method,
	}
}
