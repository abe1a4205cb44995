// -----------------------------------------------------------------------------
// Event Dispatcher Tests
// -----------------------------------------------------------------------------
// - Sync and async dispatch
// - Graceful shutdown
// - Listener error isolation
// - Concurrent dispatch
// -----------------------------------------------------------------------------

package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockLogger collects log lines.
type MockLogger struct {
	mu   sync.Mutex
	logs []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{logs: make([]string, 0)}
}

func (m *MockLogger) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprintf(format, v...))
	m.mu.Unlock()
}

func (m *MockLogger) Println(v ...interface{}) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprint(v...))
	m.mu.Unlock()
}

// TestListener counts calls.
type TestListener struct {
	handled atomic.Int32
	delay   time.Duration
	err     error
}

func (l *TestListener) Handle(event Event) error {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.handled.Add(1)
	return l.err
}

func (l *TestListener) HandledCount() int {
	return int(l.handled.Load())
}

func TestDispatcher_BasicDispatch(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	dispatcher.Listen(EventTicketPurchased, listener)

	if err := dispatcher.Dispatch(NewBaseEvent(EventTicketPurchased, "PUR-1")); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if listener.HandledCount() != 1 {
		t.Errorf("Expected listener to be called once, got: %d", listener.HandledCount())
	}

	if err := dispatcher.Dispatch(NewBaseEvent(EventTicketRefunded, "PUR-1")); err != nil {
		t.Errorf("Expected no error for event without listeners, got: %v", err)
	}
}

func TestDispatcher_Subscribe(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	dispatcher.Subscribe(AllEvents, listener)

	for _, name := range AllEvents {
		dispatcher.Dispatch(NewBaseEvent(name, nil))
	}

	if listener.HandledCount() != len(AllEvents) {
		t.Errorf("Expected %d calls, got: %d", len(AllEvents), listener.HandledCount())
	}

	if stats := dispatcher.Stats(); stats[EventCircleReviewed] != 1 {
		t.Errorf("Expected 1 listener for %s, got: %d", EventCircleReviewed, stats[EventCircleReviewed])
	}

	dispatcher.Forget(EventCircleReviewed)
	if dispatcher.HasListeners(EventCircleReviewed) {
		t.Error("Expected listeners to be forgotten")
	}
}

func TestDispatcher_AsyncDispatch(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())

	listener := &TestListener{delay: 50 * time.Millisecond}
	dispatcher.Listen(EventTicketValidated, listener)

	start := time.Now()
	dispatcher.DispatchAsync(NewBaseEvent(EventTicketValidated, "VAL-1"))
	if elapsed := time.Since(start); elapsed > 40*time.Millisecond {
		t.Errorf("DispatchAsync blocked for %v", elapsed)
	}

	dispatcher.Shutdown()

	if listener.HandledCount() != 1 {
		t.Errorf("Expected listener to be called once, got: %d", listener.HandledCount())
	}
}

func TestDispatcher_ShutdownWaitsForAsync(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())

	listener := &TestListener{delay: 20 * time.Millisecond}
	dispatcher.Listen(EventTicketPurchased, listener)

	for i := 0; i < 10; i++ {
		dispatcher.DispatchAsync(NewBaseEvent(EventTicketPurchased, fmt.Sprintf("PUR-%d", i)))
	}

	dispatcher.Shutdown()

	if listener.HandledCount() != 10 {
		t.Errorf("Expected 10 listener calls, got: %d", listener.HandledCount())
	}
}

func TestDispatcher_ShutdownWithTimeout(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())

	listener := &TestListener{delay: 300 * time.Millisecond}
	dispatcher.Listen(EventTicketPurchased, listener)
	dispatcher.DispatchAsync(NewBaseEvent(EventTicketPurchased, "PUR-1"))

	if err := dispatcher.ShutdownWithTimeout(50 * time.Millisecond); err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestDispatcher_AsyncAfterShutdown(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())

	listener := &TestListener{}
	dispatcher.Listen(EventTicketPurchased, listener)
	dispatcher.Shutdown()

	dispatcher.DispatchAsync(NewBaseEvent(EventTicketPurchased, "ignored"))
	time.Sleep(20 * time.Millisecond)

	if listener.HandledCount() != 0 {
		t.Errorf("Expected 0 listener calls after shutdown, got: %d", listener.HandledCount())
	}
}

func TestDispatcher_ConcurrentDispatch(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())
	defer dispatcher.Shutdown()

	listener := &TestListener{}
	dispatcher.Listen(EventTicketValidated, listener)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				dispatcher.Dispatch(NewBaseEvent(EventTicketValidated, fmt.Sprintf("VAL-%d-%d", id, j)))
			}
		}(i)
	}
	wg.Wait()

	if listener.HandledCount() != 200 {
		t.Errorf("Expected 200 listener calls, got: %d", listener.HandledCount())
	}
}

func TestDispatcher_ListenerError(t *testing.T) {
	dispatcher := NewDispatcher(NewMockLogger())
	defer dispatcher.Shutdown()

	first := &TestListener{}
	failing := &TestListener{err: fmt.Errorf("ledger unavailable")}
	last := &TestListener{}

	dispatcher.Listen(EventTicketRefunded, first)
	dispatcher.Listen(EventTicketRefunded, failing)
	dispatcher.Listen(EventTicketRefunded, ListenerFunc(last.Handle))

	if err := dispatcher.Dispatch(NewBaseEvent(EventTicketRefunded, "PUR-1")); err == nil {
		t.Error("Expected error from failing listener, got nil")
	}

	if first.HandledCount() != 1 || failing.HandledCount() != 1 || last.HandledCount() != 1 {
		t.Errorf("Expected every listener to run once, got %d/%d/%d",
			first.HandledCount(), failing.HandledCount(), last.HandledCount())
	}
}
