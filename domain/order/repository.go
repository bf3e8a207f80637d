package order

import "context"

// Repository is the Order aggregate's persistence port. It is narrow by
// design: save, find, and a presence check are all the application layer
// needs (§6).
type Repository interface {
	// Save persists the order and, for a transactional implementation,
	// enqueues its drained events in the same commit. Implementations
	// that have no outbox table (the in-memory double) leave event
	// draining to the caller.
	Save(ctx context.Context, order *Order) error

	// FindByID loads an order, or returns nil, nil when none exists.
	FindByID(ctx context.Context, id string) (*Order, error)

	// Exists does a presence check by primary key.
	Exists(ctx context.Context, id string) (bool, error)
}
