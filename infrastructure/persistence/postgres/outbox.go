package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gmartincasals/clean-orders/domain/shared"
)

// aggregateTypeFor derives the outbox row's aggregate_type from an event's
// EventType by stripping a known verb suffix, mirroring the source
// behavior the design notes call out as fragile. Kept here, isolated to
// one small function, rather than propagated through reflection.
func aggregateTypeFor(eventType string) string {
	verbs := []string{"created", "updated", "deleted", "added", "removed", "changed", "increased", "decreased"}
	for _, verb := range verbs {
		for _, sep := range []string{"_", "."} {
			suffix := sep + verb
			if len(eventType) > len(suffix) && eventType[len(eventType)-len(suffix):] == suffix {
				return eventType[:len(eventType)-len(suffix)]
			}
		}
	}
	return eventType
}

// OutboxWriter appends event rows within a caller-supplied transaction, so
// they commit atomically with the business data that produced them (§4.5).
type OutboxWriter struct{}

// NewOutboxWriter builds an OutboxWriter.
func NewOutboxWriter() *OutboxWriter { return &OutboxWriter{} }

// Publish inserts one outbox row for event, within tx.
func (w *OutboxWriter) Publish(ctx context.Context, tx pgx.Tx, event shared.DomainEvent) error {
	primitives := event.ToPrimitives()
	payload := map[string]interface{}{
		"occurredAt":  primitives.OccurredAt,
		"aggregateId": primitives.AggregateID,
		"data":        primitives.Data,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, uuid.New(), aggregateTypeFor(event.EventType()), event.AggregateID(), event.EventType(), payloadJSON)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

// PublishAll calls Publish for each event in order, within the same tx.
func (w *OutboxWriter) PublishAll(ctx context.Context, tx pgx.Tx, events []shared.DomainEvent) error {
	for _, event := range events {
		if err := w.Publish(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}
