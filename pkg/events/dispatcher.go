// -----------------------------------------------------------------------------
// Event Dispatcher
// -----------------------------------------------------------------------------
// Observer pattern hub between the services and their side effects.
//
// Usage:
//
//	dispatcher := events.NewDispatcher(logger)
//	defer dispatcher.Shutdown()
//
//	dispatcher.Listen(events.EventTicketPurchased, financeListener)
//	dispatcher.Dispatch(events.NewBaseEvent(events.EventTicketPurchased, purchase))
// -----------------------------------------------------------------------------

package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Dispatcher routes events to listeners.
//
// Features:
// - Thread-safe
// - Multiple listeners per event, called in registration order
// - Synchronous and asynchronous dispatch
// - Graceful shutdown waiting for in-flight async events
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    Logger
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewDispatcher creates a dispatcher. Call Shutdown when done.
func NewDispatcher(logger Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Listen registers listener for eventName.
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
	d.logger.Printf("✅ Listener registered for event: %s", eventName)
}

// Subscribe registers one listener for several events.
func (d *Dispatcher) Subscribe(eventNames []string, listener Listener) {
	for _, eventName := range eventNames {
		d.Listen(eventName, listener)
	}
}

// Dispatch runs every listener of event synchronously and returns the last
// listener error. A failing listener does not stop the others.
func (d *Dispatcher) Dispatch(event Event) error {
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners[event.Name()]...)
	d.mu.RUnlock()

	if len(listeners) == 0 {
		return nil
	}

	var lastError error
	for _, listener := range listeners {
		if err := listener.Handle(event); err != nil {
			lastError = err
			d.logger.Printf("❌ Listener error for '%s': %v", event.Name(), err)
		}
	}

	return lastError
}

// DispatchAsync dispatches event in a goroutine. Events dispatched after
// Shutdown are dropped.
func (d *Dispatcher) DispatchAsync(event Event) {
	select {
	case <-d.ctx.Done():
		d.logger.Printf("⚠️  Dispatcher is shutting down, async event '%s' ignored", event.Name())
		return
	default:
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if err := d.Dispatch(event); err != nil {
			d.logger.Printf("❌ Async dispatch error for '%s': %v", event.Name(), err)
		}
	}()
}

// Forget removes every listener of eventName.
func (d *Dispatcher) Forget(eventName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, eventName)
}

// HasListeners reports whether eventName has listeners.
func (d *Dispatcher) HasListeners(eventName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.listeners[eventName]) > 0
}

// Stats returns the listener count per event.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int)
	for event, listeners := range d.listeners {
		stats[event] = len(listeners)
	}
	return stats
}

// Shutdown stops accepting async events and waits for in-flight ones.
func (d *Dispatcher) Shutdown() {
	d.logger.Println("🔄 Shutting down event dispatcher...")
	d.cancel()
	d.wg.Wait()
	d.logger.Println("✅ Event dispatcher shutdown complete")
}

// ShutdownWithTimeout is Shutdown bounded by timeout.
func (d *Dispatcher) ShutdownWithTimeout(timeout time.Duration) error {
	d.logger.Printf("🔄 Shutting down event dispatcher (timeout: %v)...", timeout)
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Println("✅ Event dispatcher shutdown complete")
		return nil
	case <-time.After(timeout):
		d.logger.Println("⚠️  Event dispatcher shutdown timeout - some events may not have completed")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
