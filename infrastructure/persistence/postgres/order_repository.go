package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainorder "github.com/gmartincasals/clean-orders/domain/order"
	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// OrderRepository is the PostgreSQL adapter for domainorder.Repository
// (§4.4). Save runs the "rewrite items" strategy: UPSERT the order row,
// DELETE all its items, INSERT the current set, write outbox rows, all in
// one transaction. This is simpler than diffing and correct because the
// aggregate owns its full item set.
type OrderRepository struct {
	pool   *pgxpool.Pool
	outbox *OutboxWriter
	clock  ports.Clock
}

// NewOrderRepository builds an OrderRepository over pool, using clock for
// its own row timestamps (updated_at/created_at) and for any aggregate it
// reconstitutes. clock defaults to ports.SystemClock{} when nil.
func NewOrderRepository(pool *pgxpool.Pool, clock ports.Clock) *OrderRepository {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &OrderRepository{pool: pool, outbox: NewOutboxWriter(), clock: clock}
}

// Save persists order and its items, and enqueues its drained events, in
// one transaction. On any failure the transaction rolls back and an
// infrastructure error is returned.
func (r *OrderRepository) Save(ctx context.Context, order *domainorder.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	totalAmount := 0.0
	currency := "USD"
	if total, err := order.CalculateTotal(); err == nil {
		totalAmount = total.Amount()
		currency = total.Currency().Code()
	}
	// On an empty order (or one whose totals span currencies),
	// total_amount=0 and currency='USD' are inserted regardless of the
	// order's actual currency history — this is observable and tested
	// (Q3), not a bug.

	now := r.clock.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, customer_id, status, total_amount, currency, created_at, updated_at)
		VALUES ($1, NULL, NULL, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			total_amount = EXCLUDED.total_amount,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`, order.ID(), totalAmount, currency, order.CreatedAt(), now)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID()); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	for _, item := range order.Items() {
		subtotal, err := item.Subtotal()
		subtotalAmount := 0.0
		if err == nil {
			subtotalAmount = subtotal.Amount()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price, currency, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), order.ID(), item.ProductID().String(), item.Quantity().Value(),
			item.UnitPrice().Amount(), subtotalAmount, item.UnitPrice().Currency().Code(), now)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	events := order.PullEvents()
	if err := r.outbox.PublishAll(ctx, tx, events); err != nil {
		return fmt.Errorf("write outbox rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FindByID loads the order row then its items ordered by created_at ASC,
// and rebuilds value primitives. Rows that fail reconstruction are dropped
// individually rather than aborting the whole load.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domainorder.Order, error) {
	var rawID string
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT id, created_at FROM orders WHERE id = $1
	`, id).Scan(&rawID, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	orderID, err := shared.NewOrderId(rawID)
	if err != nil {
		return nil, fmt.Errorf("reconstruct order id: %w", err)
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return domainorder.Reconstitute(orderID, createdAt, items, r.clock), nil
}

func (r *OrderRepository) findItems(ctx context.Context, orderID string) ([]domainorder.ReconstructionItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, quantity, unit_price, currency
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domainorder.ReconstructionItem
	for rows.Next() {
		var productIDRaw, currencyRaw string
		var quantityRaw int
		var unitPriceRaw float64
		if err := rows.Scan(&productIDRaw, &quantityRaw, &unitPriceRaw, &currencyRaw); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}

		item, ok := reconstructItem(productIDRaw, quantityRaw, unitPriceRaw, currencyRaw)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func reconstructItem(productIDRaw string, quantityRaw int, unitPriceRaw float64, currencyRaw string) (domainorder.ReconstructionItem, bool) {
	productID, err := shared.NewProductId(productIDRaw)
	if err != nil {
		return domainorder.ReconstructionItem{}, false
	}
	quantity, err := shared.NewQuantityFromInt(quantityRaw)
	if err != nil {
		return domainorder.ReconstructionItem{}, false
	}
	currency, err := shared.NewCurrency(currencyRaw)
	if err != nil {
		return domainorder.ReconstructionItem{}, false
	}
	unitPrice, err := shared.NewMoney(unitPriceRaw, currency)
	if err != nil {
		return domainorder.ReconstructionItem{}, false
	}
	return domainorder.ReconstructionItem{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}, true
}

// Exists does a presence query by primary key.
func (r *OrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	var found int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM orders WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check order existence: %w", err)
	}
	return true, nil
}

var _ domainorder.Repository = (*OrderRepository)(nil)
