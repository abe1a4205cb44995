// -----------------------------------------------------------------------------
// Notification Listeners
// -----------------------------------------------------------------------------
// Side effects of domain events. The services only dispatch; these listeners
// turn events into toast lines, ledger entries and metric samples.
//
//	ToastListener   → one human readable line per event
//	FinanceListener → payment / refund transactions in the financial ledger
//	MetricsListener → prometheus counters
// -----------------------------------------------------------------------------

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/monitoring"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/shopspring/decimal"
)

// recordTimeout bounds a ledger write triggered by an event.
const recordTimeout = 5 * time.Second

// PaymentFailure is the payload of payment.failed. A declined payment never
// becomes a purchase, so the event carries the attempted order instead.
// Voided marks a settled charge (PaymentRef) whose purchase could not be
// recorded and has to be paid back.
type PaymentFailure struct {
	PurchaseID    string          `json:"purchase_id,omitempty"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	Voided        bool            `json:"voided,omitempty"`
	TicketTypeID  string          `json:"ticket_type_id"`
	AttendeeEmail string          `json:"attendee_email"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      models.Currency `json:"currency"`
	Reason        string          `json:"reason"`
}

// ----- Toast -----

// ToastListener writes the notification line a crew member would see as a
// toast in the back office.
type ToastListener struct {
	logger events.Logger
}

func NewToastListener(logger events.Logger) *ToastListener {
	return &ToastListener{logger: logger}
}

func (l *ToastListener) GetName() string {
	return "ToastListener"
}

func (l *ToastListener) Handle(event events.Event) error {
	message, err := ToastMessage(event)
	if err != nil {
		return err
	}
	l.logger.Printf("🔔 %s", message)
	return nil
}

// ToastMessage renders the toast text of event.
func ToastMessage(event events.Event) (string, error) {
	switch event.Name() {
	case events.EventTicketPurchased, events.EventPaymentConfirmed, events.EventTicketRefunded:
		purchase, ok := event.Payload().(*models.TicketPurchase)
		if !ok {
			return "", fmt.Errorf("invalid payload for %s event", event.Name())
		}
		switch event.Name() {
		case events.EventTicketRefunded:
			return fmt.Sprintf("Refunded %s (%s x%d) to %s",
				purchase.ID, purchase.TicketTypeName, purchase.Quantity, purchase.AttendeeEmail), nil
		case events.EventPaymentConfirmed:
			return fmt.Sprintf("Payment confirmed for %s (%s %s)",
				purchase.ID, purchase.ChargedAmount().String(), purchase.Currency), nil
		}
		return fmt.Sprintf("Ticket purchased: %s x%d for %s [%s]",
			purchase.TicketTypeName, purchase.Quantity, purchase.AttendeeName, purchase.PaymentStatus), nil

	case events.EventTicketValidated, events.EventTicketRejected:
		validation, ok := event.Payload().(*models.TicketValidation)
		if !ok {
			return "", fmt.Errorf("invalid payload for %s event", event.Name())
		}
		if validation.IsValid {
			return fmt.Sprintf("Gate %s: %s scan accepted for %s",
				validation.GateID, validation.ValidationType, validation.TicketID), nil
		}
		return fmt.Sprintf("Gate %s: %s scan rejected (%s)",
			validation.GateID, validation.ValidationType, validation.ErrorReason), nil

	case events.EventPaymentFailed:
		failure, ok := event.Payload().(*PaymentFailure)
		if !ok {
			return "", fmt.Errorf("invalid payload for %s event", event.Name())
		}
		if failure.Voided {
			return fmt.Sprintf("Payment %s voided for %s: %s", failure.PaymentRef, failure.AttendeeEmail, failure.Reason), nil
		}
		return fmt.Sprintf("Payment failed for %s: %s", failure.AttendeeEmail, failure.Reason), nil

	case events.EventCircleSubmitted, events.EventCircleReviewed:
		circle, ok := event.Payload().(*models.Circle)
		if !ok {
			return "", fmt.Errorf("invalid payload for %s event", event.Name())
		}
		if event.Name() == events.EventCircleSubmitted {
			return fmt.Sprintf("New circle application: %s (%s)", circle.Name, circle.Genre), nil
		}
		return fmt.Sprintf("Circle %s is now %s", circle.Name, circle.Status), nil

	case events.EventTransactionRecorded:
		tx, ok := event.Payload().(*models.Transaction)
		if !ok {
			return "", fmt.Errorf("invalid payload for %s event", event.Name())
		}
		return fmt.Sprintf("Recorded %s of %s %s", tx.Type, tx.Amount.String(), tx.Currency), nil
	}

	return event.Name(), nil
}

// ----- Finance -----

// TransactionRecorder stores ledger entries.
type TransactionRecorder interface {
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
}

// FinanceListener mirrors paid purchases, refunds and voided charges into the
// financial ledger. The ledger keeps only the purchase id as a reference.
type FinanceListener struct {
	recorder TransactionRecorder
}

func NewFinanceListener(recorder TransactionRecorder) *FinanceListener {
	return &FinanceListener{recorder: recorder}
}

func (l *FinanceListener) GetName() string {
	return "FinanceListener"
}

func (l *FinanceListener) Handle(event events.Event) error {
	if failure, ok := event.Payload().(*PaymentFailure); ok {
		return l.recordVoid(failure)
	}

	purchase, ok := event.Payload().(*models.TicketPurchase)
	if !ok {
		return nil
	}

	var tx *models.Transaction
	switch event.Name() {
	case events.EventTicketPurchased, events.EventPaymentConfirmed:
		// pending purchases are booked when their payment is confirmed
		if !purchase.IsPaid() {
			return nil
		}
		tx = &models.Transaction{
			Type:        models.TransactionTypePayment,
			Description: fmt.Sprintf("Ticket sale: %s x%d", purchase.TicketTypeName, purchase.Quantity),
		}
	case events.EventTicketRefunded:
		tx = &models.Transaction{
			Type:        models.TransactionTypeRefund,
			Description: fmt.Sprintf("Ticket refund: %s x%d", purchase.TicketTypeName, purchase.Quantity),
		}
	default:
		return nil
	}

	tx.Amount = purchase.ChargedAmount()
	tx.Currency = purchase.Currency
	tx.Reference = purchase.ID
	tx.Status = models.TransactionStatusCompleted

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := l.recorder.RecordTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to record %s transaction for %s: %w", tx.Type, purchase.ID, err)
	}
	return nil
}

// recordVoid books the charge and its reversal so the ledger nets to zero.
// Plain declines moved no money and are skipped.
func (l *FinanceListener) recordVoid(failure *PaymentFailure) error {
	if !failure.Voided {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	for _, tx := range []*models.Transaction{
		{
			Type:        models.TransactionTypePayment,
			Description: fmt.Sprintf("Ticket sale: %s x%d (charge %s)", failure.TicketTypeID, failure.Quantity, failure.PaymentRef),
		},
		{
			Type:        models.TransactionTypeRefund,
			Description: fmt.Sprintf("Void of charge %s: %s", failure.PaymentRef, failure.Reason),
		},
	} {
		tx.Amount = failure.Amount
		tx.Currency = failure.Currency
		tx.Reference = failure.PurchaseID
		tx.Status = models.TransactionStatusCompleted
		if err := l.recorder.RecordTransaction(ctx, tx); err != nil {
			return fmt.Errorf("failed to record void of %s: %w", failure.PaymentRef, err)
		}
	}
	return nil
}

// ----- Metrics -----

// MetricsListener feeds domain events into prometheus.
type MetricsListener struct {
	metrics *monitoring.Metrics
}

func NewMetricsListener(metrics *monitoring.Metrics) *MetricsListener {
	return &MetricsListener{metrics: metrics}
}

func (l *MetricsListener) GetName() string {
	return "MetricsListener"
}

func (l *MetricsListener) Handle(event events.Event) error {
	switch payload := event.Payload().(type) {
	case *models.TicketPurchase:
		switch event.Name() {
		case events.EventTicketPurchased:
			l.metrics.TrackPurchase(payload.TicketTypeID, string(payload.PaymentStatus), payload.Quantity)
		case events.EventTicketRefunded:
			l.metrics.TrackRefund(payload.TicketTypeID)
		}
	case *models.TicketValidation:
		l.metrics.TrackValidation(string(payload.ValidationType), payload.IsValid)
	case *PaymentFailure:
		l.metrics.TrackPaymentFailure()
	case *models.Circle:
		l.metrics.TrackCircle(string(payload.Status))
	}
	return nil
}

// ----- Wiring -----

// Register subscribes the listeners to dispatcher. finance and metrics may
// be nil.
func Register(dispatcher *events.Dispatcher, logger events.Logger, finance TransactionRecorder, metrics *monitoring.Metrics) {
	dispatcher.Subscribe(events.AllEvents, NewToastListener(logger))

	if finance != nil {
		dispatcher.Subscribe([]string{
			events.EventTicketPurchased,
			events.EventPaymentConfirmed,
			events.EventTicketRefunded,
			events.EventPaymentFailed,
		}, NewFinanceListener(finance))
	}

	if metrics != nil {
		dispatcher.Subscribe(events.AllEvents, NewMetricsListener(metrics))
	}
}
