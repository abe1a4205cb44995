// -----------------------------------------------------------------------------
// Event System - Core Interfaces
// -----------------------------------------------------------------------------
// An event is something that happened in the convention back office: a
// ticket was bought, a gate scan was rejected, a circle was reviewed.
// Services dispatch events; listeners (toast log, finance ledger, metrics)
// react to them without the services knowing about each other.
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

// Event is implemented by every event.
type Event interface {
	// Name returns the event name, e.g. "ticket.purchased".
	Name() string

	// OccurredAt returns when the event happened.
	OccurredAt() time.Time

	// Payload returns the data carried by the event.
	Payload() interface{}
}

// BaseEvent is the default Event implementation.
type BaseEvent struct {
	name       string
	occurredAt time.Time
	payload    interface{}
}

// NewBaseEvent creates an event stamped with the current time.
//
// Example:
//
//	event := events.NewBaseEvent(events.EventTicketPurchased, purchase)
func NewBaseEvent(name string, payload interface{}) *BaseEvent {
	return &BaseEvent{
		name:       name,
		occurredAt: time.Now(),
		payload:    payload,
	}
}

// Name returns the event name.
func (e *BaseEvent) Name() string {
	return e.name
}

// OccurredAt returns the event time.
func (e *BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// Payload returns the event data.
func (e *BaseEvent) Payload() interface{} {
	return e.payload
}

// -----------------------------------------------------------------------------
// Event Names
// -----------------------------------------------------------------------------

const (
	// Ticket events
	EventTicketPurchased  = "ticket.purchased"
	EventTicketRefunded   = "ticket.refunded"
	EventTicketValidated  = "ticket.validated"
	EventTicketRejected   = "ticket.rejected"
	EventPaymentConfirmed = "payment.confirmed"
	EventPaymentFailed    = "payment.failed"

	// Circle events
	EventCircleSubmitted = "circle.submitted"
	EventCircleReviewed  = "circle.reviewed"

	// Finance events
	EventTransactionRecorded = "transaction.recorded"
)

// AllEvents lists every event name the application dispatches.
var AllEvents = []string{
	EventTicketPurchased,
	EventTicketRefunded,
	EventTicketValidated,
	EventTicketRejected,
	EventPaymentConfirmed,
	EventPaymentFailed,
	EventCircleSubmitted,
	EventCircleReviewed,
	EventTransactionRecorded,
}
