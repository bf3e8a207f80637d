// Package dispatcher implements the outbox dispatcher (§4.6): a poll loop
// that drains pending outbox rows in ordered batches under
// FOR UPDATE SKIP LOCKED, safe to run as N concurrent workers against the
// same table, with at-least-once delivery and history compaction.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// Config bounds one Dispatcher's polling behavior.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
}

// DefaultConfig matches the spec's defaults: batch size 10, poll every 5s.
func DefaultConfig() Config {
	return Config{BatchSize: 10, PollInterval: 5 * time.Second}
}

// Stats is the single-query observability snapshot getStats() returns.
type Stats struct {
	PendingEvents      int
	PublishedEvents    int
	OldestPendingEvent *time.Time
}

// Dispatcher owns a connection pool and polls its outbox table. It is safe
// to run many Dispatchers (in one process or several) against the same
// table concurrently: SKIP LOCKED guarantees no two ever claim the same
// row (P8).
type Dispatcher struct {
	pool *pgxpool.Pool
	sink ports.EventSink
	log  ports.Logger
	cfg  Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New builds a Dispatcher over pool, publishing claimed events to sink.
func New(pool *pgxpool.Pool, sink ports.EventSink, log ports.Logger, cfg Config) *Dispatcher {
	return &Dispatcher{pool: pool, sink: sink, log: log, cfg: cfg}
}

// Start launches the poll loop in its own goroutine. Calling Start on an
// already-running Dispatcher logs a warning and returns without effect.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.log.Warn("dispatcher already running, ignoring start")
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	stopCh := d.stopCh
	doneCh := d.doneCh
	d.mu.Unlock()

	go d.run(ctx, stopCh, doneCh)
}

// Stop prevents new claims, waits for any in-flight claim to finish, and
// closes the pool this Dispatcher owns. Calling Stop when not running is a
// no-op.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	doneCh := d.doneCh
	d.mu.Unlock()

	<-doneCh
	d.pool.Close()
}

func (d *Dispatcher) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		n, err := d.claimAndPublish(ctx)
		if err != nil {
			d.log.Error("dispatcher claim failed", "error", err)
			if !d.interruptibleSleep(stopCh) {
				return
			}
			continue
		}
		if n == 0 {
			if !d.interruptibleSleep(stopCh) {
				return
			}
			continue
		}
		// Back-to-back draining: a non-empty batch loops immediately.
	}
}

func (d *Dispatcher) interruptibleSleep(stopCh chan struct{}) bool {
	select {
	case <-time.After(d.cfg.PollInterval):
		return true
	case <-stopCh:
		return false
	}
}

// processOnce repeatedly claims batches until one returns zero rows, then
// returns the cumulative count processed. Used by tests and one-shot job
// invocations, independent of the background poll loop.
func (d *Dispatcher) processOnce(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := d.claimAndPublish(ctx)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
}

// ProcessOnce is the exported form of processOnce, for callers outside this
// package and for the integration tests.
func (d *Dispatcher) ProcessOnce(ctx context.Context) (int, error) {
	return d.processOnce(ctx)
}

type outboxRow struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

type outboxPayload struct {
	OccurredAt  string      `json:"occurredAt"`
	AggregateID string      `json:"aggregateId"`
	Data        interface{} `json:"data"`
}

// claimAndPublish runs steps 1-6 of the polling loop in one transaction: a
// SKIP LOCKED claim, a best-effort publish of the claimed batch, a stamp of
// published_at, and a commit. Any failure rolls the whole batch back,
// leaving it unpublished for redelivery on the next claim (P9).
func (d *Dispatcher) claimAndPublish(ctx context.Context) (int, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, d.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim outbox batch: %w", err)
	}

	var claimed []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.ID, &row.AggregateType, &row.AggregateID, &row.EventType, &row.Payload, &row.CreatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox row: %w", err)
		}
		claimed = append(claimed, row)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox batch: %w", err)
	}
	rows.Close()

	if len(claimed) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("commit empty claim: %w", err)
		}
		return 0, nil
	}

	events := make([]shared.DomainEvent, 0, len(claimed))
	ids := make([]uuid.UUID, 0, len(claimed))
	for _, row := range claimed {
		events = append(events, rowToEvent(row))
		ids = append(ids, row.ID)
	}

	// FIFO within this claim (P10): events is built in the ORDER BY
	// created_at ASC order the query returned, and PublishAll preserves it.
	if err := d.sink.PublishAll(ctx, events); err != nil {
		return 0, fmt.Errorf("publish claimed batch: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE outbox SET published_at = now() WHERE id = ANY($1)`, ids); err != nil {
		return 0, fmt.Errorf("stamp published batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit claimed batch: %w", err)
	}
	return len(claimed), nil
}

func rowToEvent(row outboxRow) shared.DomainEvent {
	var payload outboxPayload
	occurredAt := row.CreatedAt
	var data interface{}
	if err := json.Unmarshal(row.Payload, &payload); err == nil {
		if t, err := time.Parse(time.RFC3339, payload.OccurredAt); err == nil {
			occurredAt = t
		}
		data = payload.Data
	}
	return rawEvent{
		eventType:   row.EventType,
		aggregateID: row.AggregateID,
		occurredAt:  occurredAt,
		data:        data,
	}
}

// rawEvent reconstructs a shared.DomainEvent from an outbox row for
// handing to the sink. It carries no behavior beyond the envelope: by the
// time an event reaches the dispatcher it is just data.
type rawEvent struct {
	eventType   string
	aggregateID string
	occurredAt  time.Time
	data        interface{}
}

func (e rawEvent) EventType() string     { return e.eventType }
func (e rawEvent) OccurredAt() time.Time { return e.occurredAt }
func (e rawEvent) AggregateID() string   { return e.aggregateID }
func (e rawEvent) ToPrimitives() shared.EventPrimitives {
	return shared.EventPrimitives{
		AggregateID: e.aggregateID,
		OccurredAt:  e.occurredAt.Format(time.RFC3339),
		Data:        e.data,
	}
}

var _ shared.DomainEvent = rawEvent{}

// GetStats runs the single aggregation query §4.6 calls for: pending and
// published counts plus the oldest still-pending row's created_at.
func (d *Dispatcher) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	var oldest *time.Time
	err := d.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE published_at IS NULL),
			count(*) FILTER (WHERE published_at IS NOT NULL),
			min(created_at) FILTER (WHERE published_at IS NULL)
		FROM outbox
	`).Scan(&stats.PendingEvents, &stats.PublishedEvents, &oldest)
	if err != nil {
		return Stats{}, fmt.Errorf("query outbox stats: %w", err)
	}
	stats.OldestPendingEvent = oldest
	return stats, nil
}

// CleanupPublished deletes outbox rows published more than olderThanDays
// ago. Unpublished rows are never touched, regardless of age. Returns the
// number of rows deleted.
func (d *Dispatcher) CleanupPublished(ctx context.Context, olderThanDays int) (int, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM outbox
		WHERE published_at IS NOT NULL
		AND published_at < now() - ($1 || ' days')::interval
	`, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("cleanup published outbox rows: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
