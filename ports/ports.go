// Package ports declares the narrow interfaces the core consumes (§6 of the
// spec): EventSink, Clock, Logger and Pricing. Repository lives alongside
// its aggregate in domain/order — it is a port too, just grounded closer to
// the type it addresses, following the teacher's layout.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/gmartincasals/clean-orders/domain/shared"
)

// EventSink is the boundary between the outbox write path / dispatcher and
// whatever ultimately consumes events — a message broker in production, an
// in-memory recorder in tests. Implementations must be idempotent on
// event id: at-least-once delivery means duplicates are possible (P9).
type EventSink interface {
	// Publish hands a single event to the sink.
	Publish(ctx context.Context, event shared.DomainEvent) error

	// PublishAll hands events to the sink in order. Implementations
	// should preserve call order (P10 relies on FIFO-within-claim from
	// the dispatcher side; the sink must not reorder what it's handed).
	PublishAll(ctx context.Context, events []shared.DomainEvent) error
}

// Clock abstracts "now" so tests can control time without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Logger is the narrow logging port application/domain-adjacent code
// depends on, so it never imports go.uber.org/zap directly. cmd/ wires the
// concrete zap-backed implementation.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Pricing looks up a product's current unit price. It is a pure lookup —
// the price catalog itself is an external collaborator per the spec's
// non-goals, specified only by this interface.
type Pricing interface {
	// PriceFor returns the unit price for productID, or
	// ErrProductNotPriced when the catalog has no entry for it.
	PriceFor(ctx context.Context, productID string) (shared.Money, error)
}

// ErrProductNotPriced is returned by a Pricing implementation when no price
// is on file for the requested product. It maps to NotFoundError{resource:
// "Product"} at the application layer, not ValidationError.
var ErrProductNotPriced = errors.New("no price on file for product")
