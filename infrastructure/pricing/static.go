// Package pricing provides adapters for the Pricing port. The price
// catalog itself is an external collaborator per the spec's non-goals; both
// adapters here are thin lookups, not a pricing engine.
package pricing

import (
	"context"
	"sync"

	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// StaticCatalog is an in-memory Pricing implementation for the
// USE_INMEMORY runtime configuration and for tests.
type StaticCatalog struct {
	mu     sync.RWMutex
	prices map[string]shared.Money
}

// NewStaticCatalog builds an empty catalog.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{prices: make(map[string]shared.Money)}
}

// Set records productID's unit price, overwriting any prior entry.
func (c *StaticCatalog) Set(productID string, price shared.Money) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[productID] = price
}

// PriceFor returns the recorded price, or ports.ErrProductNotPriced.
func (c *StaticCatalog) PriceFor(ctx context.Context, productID string) (shared.Money, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.prices[productID]
	if !ok {
		return shared.Money{}, ports.ErrProductNotPriced
	}
	return price, nil
}

var _ ports.Pricing = (*StaticCatalog)(nil)
