package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gmartincasals/clean-orders/domain/shared"
)

// NoopEventSink is the EventSink used in tests and in USE_INMEMORY mode. It
// has no persistence contract: it records events in memory, optionally
// echoes them to stdout, and simulates a 5-25ms delay per call the way a
// real broker round-trip would impose one.
type NoopEventSink struct {
	echo bool

	mu       sync.Mutex
	received []shared.DomainEvent
}

// NewNoopEventSink builds a NoopEventSink. When echo is true, every
// published event is also printed to stdout.
func NewNoopEventSink(echo bool) *NoopEventSink {
	return &NoopEventSink{echo: echo}
}

// Publish records event after a simulated delay.
func (s *NoopEventSink) Publish(ctx context.Context, event shared.DomainEvent) error {
	s.simulateLatency()

	s.mu.Lock()
	s.received = append(s.received, event)
	s.mu.Unlock()

	if s.echo {
		fmt.Printf("[event] %s aggregate=%s at=%s\n", event.EventType(), event.AggregateID(), event.OccurredAt().Format(time.RFC3339))
	}
	return nil
}

// PublishAll calls Publish for each event in order.
func (s *NoopEventSink) PublishAll(ctx context.Context, events []shared.DomainEvent) error {
	for _, event := range events {
		if err := s.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Received returns a defensive copy of every event handed to this sink, in
// call order, for test inspection.
func (s *NoopEventSink) Received() []shared.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.DomainEvent, len(s.received))
	copy(out, s.received)
	return out
}

// Count returns the number of events recorded.
func (s *NoopEventSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func (s *NoopEventSink) simulateLatency() {
	delay := time.Duration(5+rand.Intn(21)) * time.Millisecond
	time.Sleep(delay)
}
