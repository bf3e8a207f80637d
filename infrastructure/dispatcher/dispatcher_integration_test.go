//go:build integration

package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	domainorder "github.com/gmartincasals/clean-orders/domain/order"
	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/infrastructure/persistence/postgres"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// recordingSink records every event it's handed, in call order, guarded by
// a mutex since concurrent dispatchers call it from separate goroutines.
type recordingSink struct {
	mu       sync.Mutex
	received []shared.DomainEvent
	failNext int // number of remaining PublishAll calls to fail, for P9
}

func (s *recordingSink) Publish(ctx context.Context, event shared.DomainEvent) error {
	return s.PublishAll(ctx, []shared.DomainEvent{event})
}

func (s *recordingSink) PublishAll(ctx context.Context, events []shared.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return context.DeadlineExceeded
	}
	s.received = append(s.received, events...)
	return nil
}

func (s *recordingSink) snapshot() []shared.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.DomainEvent, len(s.received))
	copy(out, s.received)
	return out
}

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("outbox_test"),
		tcpostgres.WithUsername("outbox_test"),
		tcpostgres.WithPassword("outbox_test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, "../../migrations"))
	return pool
}

func seedPendingRows(t *testing.T, pool *pgxpool.Pool, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := pool.Exec(ctx, `
			INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
			VALUES ($1, 'order', 'order.created', 'order.created', '{"data":{}}'::jsonb, now() + ($2 || ' milliseconds')::interval)
		`, uuid.New(), i)
		require.NoError(t, err)
	}
}

// TestOrderRepositorySave_OutboxAtomicity is P7: saving an order through the
// real repository increases the outbox row count for that save by exactly
// the number of events drained.
func TestOrderRepositorySave_OutboxAtomicity(t *testing.T) {
	pool := setupTestPool(t)
	repo := postgres.NewOrderRepository(pool, nil)

	agg := domainorder.Create(nil, nil)
	require.NoError(t, repo.Save(context.Background(), agg))

	var count int
	err := pool.QueryRow(context.Background(), `SELECT count(*) FROM outbox`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "one OrderCreated event should yield exactly one outbox row")
}

// TestDispatcher_NonDuplication is P8: N concurrent workers claiming from
// the same pending set publish exactly N events total and leave nothing
// unpublished.
func TestDispatcher_NonDuplication(t *testing.T) {
	pool := setupTestPool(t)
	seedPendingRows(t, pool, 20)

	sink := &recordingSink{}
	log := noopLogger{}

	var wg sync.WaitGroup
	counts := make([]int, 4)
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := New(pool, sink, log, Config{BatchSize: 3, PollInterval: 50 * time.Millisecond})
			n, err := d.ProcessOnce(context.Background())
			require.NoError(t, err)
			counts[i] = n
		}()
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	require.Equal(t, 20, total)
	require.Len(t, sink.snapshot(), 20)

	var pending int
	err := pool.QueryRow(context.Background(), `SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&pending)
	require.NoError(t, err)
	require.Zero(t, pending)
}

// TestDispatcher_AtLeastOnce is P9: a sink failure mid-claim rolls the
// whole transaction back, so the claimed rows remain unpublished and are
// redelivered — and republished — on the next attempt.
func TestDispatcher_AtLeastOnce(t *testing.T) {
	pool := setupTestPool(t)
	seedPendingRows(t, pool, 3)

	sink := &recordingSink{failNext: 1}
	d := New(pool, sink, noopLogger{}, Config{BatchSize: 10})

	n, err := d.ProcessOnce(context.Background())
	require.Error(t, err)
	require.Zero(t, n)
	require.Empty(t, sink.snapshot())

	var pending int
	err = pool.QueryRow(context.Background(), `SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&pending)
	require.NoError(t, err)
	require.Equal(t, 3, pending, "a failed claim must leave every row unpublished for redelivery")

	n, err = d.ProcessOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, sink.snapshot(), 3)
}

// TestDispatcher_FIFOWithinClaim is P10: within one claim, events reach the
// sink in created_at ascending order.
func TestDispatcher_FIFOWithinClaim(t *testing.T) {
	pool := setupTestPool(t)
	seedPendingRows(t, pool, 5)

	sink := &recordingSink{}
	d := New(pool, sink, noopLogger{}, Config{BatchSize: 10})

	n, err := d.ProcessOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)

	received := sink.snapshot()
	require.Len(t, received, 5)
	for i := 1; i < len(received); i++ {
		require.False(t, received[i].OccurredAt().Before(received[i-1].OccurredAt()),
			"event %d occurred before event %d, want non-decreasing order", i, i-1)
	}
}

// TestDispatcher_ConcurrentDispatchersDrainExactly is S6: two dispatchers
// with batchSize=5 invoking ProcessOnce concurrently against 10 seeded rows
// together claim all ten exactly once.
func TestDispatcher_ConcurrentDispatchersDrainExactly(t *testing.T) {
	pool := setupTestPool(t)
	seedPendingRows(t, pool, 10)

	sink := &recordingSink{}
	log := noopLogger{}

	d1 := New(pool, sink, log, Config{BatchSize: 5})
	d2 := New(pool, sink, log, Config{BatchSize: 5})

	var wg sync.WaitGroup
	results := make([]int, 2)
	wg.Add(2)
	go func() { defer wg.Done(); n, err := d1.ProcessOnce(context.Background()); require.NoError(t, err); results[0] = n }()
	go func() { defer wg.Done(); n, err := d2.ProcessOnce(context.Background()); require.NoError(t, err); results[1] = n }()
	wg.Wait()

	require.Equal(t, 10, results[0]+results[1])

	var unpublished int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&unpublished))
	require.Zero(t, unpublished)
}
