// -----------------------------------------------------------------------------
// Event Listeners
// -----------------------------------------------------------------------------
// A listener runs when an event it is registered for is dispatched.
//
// Example:
//
//	dispatcher.Listen(events.EventTicketRefunded, events.ListenerFunc(func(e events.Event) error {
//	    purchase := e.Payload().(*models.TicketPurchase)
//	    log.Println("Refunded:", purchase.ID)
//	    return nil
//	}))
// -----------------------------------------------------------------------------

package events

// Listener handles events.
//
// A listener error is logged by the dispatcher and does not stop the
// remaining listeners.
type Listener interface {
	Handle(event Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event) error

// Handle calls f.
func (f ListenerFunc) Handle(event Event) error {
	return f(event)
}

// Logger is the logging dependency (satisfied by *log.Logger).
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
