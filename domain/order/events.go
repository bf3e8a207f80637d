package order

import (
	"time"

	"github.com/gmartincasals/clean-orders/domain/shared"
)

// Per Q1 in the design notes, every event's AggregateID is populated from
// the event's own EventType string, not the order id. Scenarios S1/S5
// assert this literally; it is preserved verbatim rather than "fixed",
// per the explicit instruction to keep documented source oddities unless
// consciously redesigned.

// OrderCreated is emitted once, by Create.
type OrderCreated struct {
	orderID    shared.OrderId
	occurredAt time.Time
}

// NewOrderCreated builds an OrderCreated event for orderID, stamped with now
// (the aggregate's injected ports.Clock, so tests can control it).
func NewOrderCreated(orderID shared.OrderId, now time.Time) *OrderCreated {
	return &OrderCreated{orderID: orderID, occurredAt: now}
}

func (e *OrderCreated) EventType() string    { return "order.created" }
func (e *OrderCreated) OccurredAt() time.Time { return e.occurredAt }
func (e *OrderCreated) AggregateID() string  { return e.EventType() }

func (e *OrderCreated) ToPrimitives() shared.EventPrimitives {
	return shared.EventPrimitives{
		AggregateID: e.AggregateID(),
		OccurredAt:  e.occurredAt.Format(time.RFC3339),
		Data:        map[string]interface{}{"orderId": e.orderID.String()},
	}
}

// OrderItemAdded is emitted when AddItem creates a new line.
type OrderItemAdded struct {
	orderID    shared.OrderId
	productID  shared.ProductId
	quantity   shared.Quantity
	unitPrice  shared.Money
	occurredAt time.Time
}

// NewOrderItemAdded builds an OrderItemAdded event, stamped with now.
func NewOrderItemAdded(orderID shared.OrderId, productID shared.ProductId, quantity shared.Quantity, unitPrice shared.Money, now time.Time) *OrderItemAdded {
	return &OrderItemAdded{
		orderID:    orderID,
		productID:  productID,
		quantity:   quantity,
		unitPrice:  unitPrice,
		occurredAt: now,
	}
}

func (e *OrderItemAdded) EventType() string    { return "order.item_added" }
func (e *OrderItemAdded) OccurredAt() time.Time { return e.occurredAt }
func (e *OrderItemAdded) AggregateID() string  { return e.EventType() }

func (e *OrderItemAdded) ToPrimitives() shared.EventPrimitives {
	return shared.EventPrimitives{
		AggregateID: e.AggregateID(),
		OccurredAt:  e.occurredAt.Format(time.RFC3339),
		Data: map[string]interface{}{
			"orderId":   e.orderID.String(),
			"productId": e.productID.String(),
			"quantity":  e.quantity.Value(),
			"unitPrice": map[string]interface{}{
				"amount":   e.unitPrice.Amount(),
				"currency": e.unitPrice.Currency().Code(),
			},
		},
	}
}

// OrderItemQuantityIncreased is emitted when AddItem merges into an
// existing line.
type OrderItemQuantityIncreased struct {
	orderID          shared.OrderId
	productID        shared.ProductId
	previousQuantity shared.Quantity
	newQuantity      shared.Quantity
	occurredAt       time.Time
}

// NewOrderItemQuantityIncreased builds an OrderItemQuantityIncreased event,
// stamped with now.
func NewOrderItemQuantityIncreased(orderID shared.OrderId, productID shared.ProductId, previous, new shared.Quantity, now time.Time) *OrderItemQuantityIncreased {
	return &OrderItemQuantityIncreased{
		orderID:          orderID,
		productID:        productID,
		previousQuantity: previous,
		newQuantity:      new,
		occurredAt:       now,
	}
}

func (e *OrderItemQuantityIncreased) EventType() string    { return "order.item_quantity_increased" }
func (e *OrderItemQuantityIncreased) OccurredAt() time.Time { return e.occurredAt }
func (e *OrderItemQuantityIncreased) AggregateID() string  { return e.EventType() }

func (e *OrderItemQuantityIncreased) ToPrimitives() shared.EventPrimitives {
	return shared.EventPrimitives{
		AggregateID: e.AggregateID(),
		OccurredAt:  e.occurredAt.Format(time.RFC3339),
		Data: map[string]interface{}{
			"orderId":          e.orderID.String(),
			"productId":        e.productID.String(),
			"previousQuantity": e.previousQuantity.Value(),
			"newQuantity":      e.newQuantity.Value(),
		},
	}
}

var (
	_ shared.DomainEvent = (*OrderCreated)(nil)
	_ shared.DomainEvent = (*OrderItemAdded)(nil)
	_ shared.DomainEvent = (*OrderItemQuantityIncreased)(nil)
)
