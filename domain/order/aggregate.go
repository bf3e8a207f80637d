// Package order holds the Order aggregate: the only mutator in this core
// that emits domain events. Its rules — currency coherence, item merging,
// quantity increment — define the event taxonomy, so this package is the
// source of truth for event payloads.
//
// DDD conventions followed here (grounded on the teacher's domain layer):
//  1. All fields are private; behavior is exposed through methods.
//  2. Aggregate roots are built through factory functions, never struct
//     literals, so invariants hold from the first observable state.
//  3. A ReconstructionItem slice passed to Reconstitute is the only way the
//     persistence layer reconstructs an aggregate without emitting events.
package order

import (
	"time"

	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// Order is the aggregate root. It maintains the consistency boundary over
// its items: all items share one currency (I1), no item has a zero unit
// price (I2), and adding the same product twice merges quantities rather
// than creating a duplicate line (I3).
type Order struct {
	id        shared.OrderId
	createdAt time.Time
	items     []Item
	events    []shared.DomainEvent
	clock     ports.Clock
}

// Item is a line within an Order: a product, a strictly-positive quantity
// and the unit price recorded when the line was first created. It is
// immutable — AddItem always replaces a line wholesale rather than mutating
// one in place.
type Item struct {
	productID shared.ProductId
	quantity  shared.Quantity
	unitPrice shared.Money
}

// ProductID returns the item's product identifier.
func (i Item) ProductID() shared.ProductId { return i.productID }

// Quantity returns the item's quantity.
func (i Item) Quantity() shared.Quantity { return i.quantity }

// UnitPrice returns the item's recorded unit price.
func (i Item) UnitPrice() shared.Money { return i.unitPrice }

// Subtotal is quantity * unitPrice.
func (i Item) Subtotal() (shared.Money, error) {
	return i.unitPrice.Multiply(float64(i.quantity.Value()))
}

// String renders "<product> x<qty> @ <price> = <subtotal>".
func (i Item) String() string {
	subtotal, err := i.Subtotal()
	subtotalStr := "n/a"
	if err == nil {
		subtotalStr = subtotal.String()
	}
	return i.productID.String() + " x" + itoa(i.quantity.Value()) + " @ " + i.unitPrice.String() + " = " + subtotalStr
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Create builds a fresh Order. If id is nil, one is generated. Creation
// emits OrderCreated, stamped from clock (SystemClock when clock is nil).
func Create(id *shared.OrderId, clock ports.Clock) *Order {
	var orderID shared.OrderId
	if id != nil {
		orderID = *id
	} else {
		orderID = shared.GenerateOrderId()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	now := clock.Now().UTC()
	o := &Order{
		id:        orderID,
		createdAt: now,
		items:     nil,
		events:    nil,
		clock:     clock,
	}
	o.events = append(o.events, NewOrderCreated(orderID, now))
	return o
}

// ReconstructionItem is the plain-data shape used to reconstitute an Item
// without going through AddItem's validation and event emission.
type ReconstructionItem struct {
	ProductID shared.ProductId
	Quantity  shared.Quantity
	UnitPrice shared.Money
}

// Reconstitute loads an Order from storage without emitting events. Items
// are taken as given — they already passed validation when they were first
// written. clock becomes the aggregate's clock for any subsequent mutation
// (e.g. AddItem after a reload); nil defaults to SystemClock.
func Reconstitute(id shared.OrderId, createdAt time.Time, items []ReconstructionItem, clock ports.Clock) *Order {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	loaded := make([]Item, len(items))
	for i, it := range items {
		loaded[i] = Item{productID: it.ProductID, quantity: it.Quantity, unitPrice: it.UnitPrice}
	}
	return &Order{
		id:        id,
		createdAt: createdAt,
		items:     loaded,
		events:    nil,
		clock:     clock,
	}
}

// SetClock overrides the aggregate's clock after construction. The
// application layer calls this on an aggregate it just loaded from a
// repository, so events emitted by a subsequent mutation are stamped by the
// same ports.Clock the rest of the use case runs under.
func (o *Order) SetClock(clock ports.Clock) {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	o.clock = clock
}

// AddItem enforces the aggregate's ordered validation contract:
//  1. Reject a zero unit price.
//  2. If the order already has items, reject a currency mismatch against
//     the first existing item's currency.
//  3. If a line for productID exists, merge quantities, preserve the
//     existing line's unit price, and emit OrderItemQuantityIncreased.
//  4. Otherwise create a new line and emit OrderItemAdded.
func (o *Order) AddItem(productID shared.ProductId, quantity shared.Quantity, unitPrice shared.Money) error {
	if unitPrice.IsZero() {
		return shared.Fail("unitPrice", "must not be zero")
	}

	if len(o.items) > 0 {
		existingCurrency := o.items[0].unitPrice.Currency()
		if unitPrice.Currency().Code() != existingCurrency.Code() {
			return shared.Fail("currency", "expected "+existingCurrency.Code()+" but got "+unitPrice.Currency().Code())
		}
	}

	clock := o.clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	now := clock.Now().UTC()

	for idx, existing := range o.items {
		if existing.productID.Equals(productID) {
			newQuantity := existing.quantity.Add(quantity)
			o.items[idx] = Item{
				productID: existing.productID,
				quantity:  newQuantity,
				unitPrice: existing.unitPrice,
			}
			o.events = append(o.events, NewOrderItemQuantityIncreased(o.id, productID, existing.quantity, newQuantity, now))
			return nil
		}
	}

	o.items = append(o.items, Item{productID: productID, quantity: quantity, unitPrice: unitPrice})
	o.events = append(o.events, NewOrderItemAdded(o.id, productID, quantity, unitPrice, now))
	return nil
}

// CalculateTotalsByCurrency sums subtotals per currency code. Lines whose
// Subtotal computation fails are skipped silently, per contract.
func (o *Order) CalculateTotalsByCurrency() map[string]shared.Money {
	totals := make(map[string]shared.Money)
	for _, item := range o.items {
		subtotal, err := item.Subtotal()
		if err != nil {
			continue
		}
		code := subtotal.Currency().Code()
		if existing, ok := totals[code]; ok {
			summed, err := existing.Add(subtotal)
			if err != nil {
				continue
			}
			totals[code] = summed
		} else {
			totals[code] = subtotal
		}
	}
	return totals
}

// CalculateTotal fails when the order has no items or when its totals span
// more than one currency; otherwise it returns the single total.
func (o *Order) CalculateTotal() (shared.Money, error) {
	totals := o.CalculateTotalsByCurrency()
	if len(totals) == 0 {
		return shared.Money{}, shared.Fail("items", "order has no items")
	}
	if len(totals) > 1 {
		return shared.Money{}, shared.Fail("currency", "order totals span more than one currency")
	}
	for _, total := range totals {
		return total, nil
	}
	panic("unreachable")
}

// PullEvents retrieves and clears the aggregate's pending event buffer
// atomically with respect to the caller. Two consecutive calls on an
// unchanged aggregate: the second returns an empty slice (P6).
func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

// ID returns the order's identifier.
func (o *Order) ID() string { return o.id.String() }

// OrderID returns the order's identifier as an OrderId value.
func (o *Order) OrderID() shared.OrderId { return o.id }

// CreatedAt returns the creation instant.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// Items returns a defensive copy of the order's lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// ItemCount returns the number of distinct lines.
func (o *Order) ItemCount() int { return len(o.items) }

// TotalQuantity sums the quantities of every line.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.items {
		total += item.quantity.Value()
	}
	return total
}

// HasProduct reports whether a line for id exists.
func (o *Order) HasProduct(id shared.ProductId) bool {
	for _, item := range o.items {
		if item.productID.Equals(id) {
			return true
		}
	}
	return false
}

var _ shared.AggregateRoot = (*Order)(nil)
