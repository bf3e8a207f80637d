// Package memory holds the in-memory test doubles used by property tests
// and by the USE_INMEMORY runtime configuration: a repository with no
// outbox table, and a noop event sink.
package memory

import (
	"context"
	"sync"

	domainorder "github.com/gmartincasals/clean-orders/domain/order"
)

// OrderRepository is a deterministic, non-persistent substitute for the
// PostgreSQL repository. It has no outbox table: Save does not touch the
// aggregate's event buffer at all, leaving draining and publishing entirely
// to the caller (the application service's post-persist drain-and-publish
// step is the only delivery path in this configuration).
type OrderRepository struct {
	mu     sync.Mutex
	orders map[string]snapshot
}

type snapshot struct {
	order *domainorder.Order
}

// NewOrderRepository builds an empty in-memory repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]snapshot)}
}

// Save stores a defensive copy of order's current state, keyed by id.
func (r *OrderRepository) Save(ctx context.Context, order *domainorder.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domainorder.ReconstructionItem, 0, order.ItemCount())
	for _, item := range order.Items() {
		items = append(items, domainorder.ReconstructionItem{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}
	copied := domainorder.Reconstitute(order.OrderID(), order.CreatedAt(), items, nil)
	r.orders[order.ID()] = snapshot{order: copied}
	return nil
}

// FindByID returns a defensive copy of the stored order, or nil, nil when
// absent.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domainorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.orders[id]
	if !ok {
		return nil, nil
	}

	items := make([]domainorder.ReconstructionItem, 0, snap.order.ItemCount())
	for _, item := range snap.order.Items() {
		items = append(items, domainorder.ReconstructionItem{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}
	return domainorder.Reconstitute(snap.order.OrderID(), snap.order.CreatedAt(), items, nil), nil
}

// Exists reports whether id has been saved.
func (r *OrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[id]
	return ok, nil
}

var _ domainorder.Repository = (*OrderRepository)(nil)
