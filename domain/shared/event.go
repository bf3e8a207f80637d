package shared

import "time"

// DomainEvent is the envelope every event flowing through the outbox
// implements. Concrete variants are tagged with an explicit EventType
// string rather than discriminated by Go's reflected type name: the
// teacher's suffix-stripping heuristic for deriving an aggregate type from
// a class name is exactly the kind of fragile reflection this module
// avoids by naming the field directly on each variant.
type DomainEvent interface {
	// EventType returns the stable event name, e.g. "order.created".
	EventType() string

	// OccurredAt returns the UTC instant the event was recorded.
	OccurredAt() time.Time

	// AggregateID returns the event's aggregate-id field. Per this
	// module's preserved source behavior, that field is populated from
	// the event type string, not the order id — see the Order aggregate
	// for why this oddity is kept verbatim rather than "fixed".
	AggregateID() string

	// ToPrimitives renders {aggregateId, occurredAt (ISO-8601 UTC), data}.
	ToPrimitives() EventPrimitives
}

// EventPrimitives is the plain-data projection of a DomainEvent, ready for
// JSON encoding into an outbox row's payload column.
type EventPrimitives struct {
	AggregateID string      `json:"aggregateId"`
	OccurredAt  string      `json:"occurredAt"`
	Data        interface{} `json:"data"`
}
