package postgres

import (
	"context"

	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// AlreadyDrainedSink is the ports.EventSink wired to application/order.Service
// when OrderRepository is in play. It exists to make an invariant visible
// rather than silently rely on it: OrderRepository.Save drains and writes
// every event to the outbox inside its own transaction, so by the time the
// service's post-save drain runs, PullEvents always returns an empty
// slice and this sink is never actually called. If it ever is, that means
// the invariant broke, so it logs loudly instead of pretending to publish.
type AlreadyDrainedSink struct {
	log ports.Logger
}

// NewAlreadyDrainedSink builds an AlreadyDrainedSink that logs through log.
func NewAlreadyDrainedSink(log ports.Logger) *AlreadyDrainedSink {
	return &AlreadyDrainedSink{log: log}
}

// Publish logs an error: this should be unreachable.
func (s *AlreadyDrainedSink) Publish(ctx context.Context, event shared.DomainEvent) error {
	s.log.Error("AlreadyDrainedSink.Publish called, but OrderRepository.Save should have drained all events", "eventType", event.EventType())
	return nil
}

// PublishAll logs an error per event when called with a non-empty batch.
func (s *AlreadyDrainedSink) PublishAll(ctx context.Context, events []shared.DomainEvent) error {
	for _, event := range events {
		if err := s.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.EventSink = (*AlreadyDrainedSink)(nil)
