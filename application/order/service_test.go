package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/infrastructure/persistence/memory"
	"github.com/gmartincasals/clean-orders/infrastructure/pricing"
	apperrors "github.com/gmartincasals/clean-orders/pkg/errors"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func newTestService(t *testing.T) (*Service, *memory.NoopEventSink, *pricing.StaticCatalog) {
	t.Helper()
	repo := memory.NewOrderRepository()
	sink := memory.NewNoopEventSink(false)
	catalog := pricing.NewStaticCatalog()
	return NewService(repo, catalog, sink, noopLogger{}, nil), sink, catalog
}

// TestCreateOrder_GeneratesIDAndEmptyTotal is S1: POST /orders with an
// empty body returns an orderId matching "ORD-", no items, and a
// {amount:0, currency:USD} total, and the create path drains exactly one
// event to the sink.
func TestCreateOrder_GeneratesIDAndEmptyTotal(t *testing.T) {
	svc, sink, _ := newTestService(t)

	out, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if !strings.HasPrefix(out.OrderID, "ORD-") {
		t.Fatalf("OrderID = %q, want prefix ORD-", out.OrderID)
	}
	if len(out.Items) != 0 {
		t.Fatalf("Items = %v, want empty", out.Items)
	}
	if out.Total.Amount != 0 || out.Total.Currency != "USD" {
		t.Fatalf("Total = %+v, want {0 USD}", out.Total)
	}
	if sink.Count() != 1 {
		t.Fatalf("sink received %d events, want 1", sink.Count())
	}
}

// TestAddItemToOrder_PricesFromCatalog is S2: adding an item prices it from
// the catalog and returns the expected subtotal/total.
func TestAddItemToOrder_PricesFromCatalog(t *testing.T) {
	svc, sink, catalog := newTestService(t)
	price, err := shared.NewMoney(1299.99, mustTestCurrency(t, "USD"))
	if err != nil {
		t.Fatalf("NewMoney failed: %v", err)
	}
	catalog.Set("LAPTOP-001", price)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{OrderID: "ORD-E2E-PRICING"})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	sink.Received() // read-only: the OrderCreated event stays recorded

	out, err := svc.AddItemToOrder(context.Background(), AddItemInput{
		OrderID:   created.OrderID,
		ProductID: "LAPTOP-001",
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("AddItemToOrder failed: %v", err)
	}

	if len(out.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(out.Items))
	}
	item := out.Items[0]
	if item.UnitPrice.Amount != 1299.99 || item.UnitPrice.Currency != "USD" {
		t.Fatalf("UnitPrice = %+v, want {1299.99 USD}", item.UnitPrice)
	}
	if item.Subtotal.Amount != 2599.98 {
		t.Fatalf("Subtotal.Amount = %v, want 2599.98", item.Subtotal.Amount)
	}
	if out.Total.Amount != 2599.98 || out.Total.Currency != "USD" {
		t.Fatalf("Total = %+v, want {2599.98 USD}", out.Total)
	}
}

// TestAddItemToOrder_MergesQuantities is S3: a second add for the same
// product merges into one line at the first-seen price.
func TestAddItemToOrder_MergesQuantities(t *testing.T) {
	svc, _, catalog := newTestService(t)
	price, _ := shared.NewMoney(1299.99, mustTestCurrency(t, "USD"))
	catalog.Set("LAPTOP-001", price)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if _, err := svc.AddItemToOrder(context.Background(), AddItemInput{OrderID: created.OrderID, ProductID: "LAPTOP-001", Quantity: 2}); err != nil {
		t.Fatalf("first AddItemToOrder failed: %v", err)
	}
	out, err := svc.AddItemToOrder(context.Background(), AddItemInput{OrderID: created.OrderID, ProductID: "LAPTOP-001", Quantity: 3})
	if err != nil {
		t.Fatalf("second AddItemToOrder failed: %v", err)
	}

	if len(out.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(out.Items))
	}
	item := out.Items[0]
	if item.Quantity != 5 {
		t.Fatalf("Quantity = %d, want 5", item.Quantity)
	}
	if item.UnitPrice.Amount != 1299.99 {
		t.Fatalf("UnitPrice.Amount = %v, want the first-seen 1299.99", item.UnitPrice.Amount)
	}
	if out.Total.Amount != 6499.95 {
		t.Fatalf("Total.Amount = %v, want 6499.95", out.Total.Amount)
	}
}

// TestAddItemToOrder_RejectsCurrencyMismatch is S4: adding a product priced
// in a different currency than the order's existing line fails validation.
func TestAddItemToOrder_RejectsCurrencyMismatch(t *testing.T) {
	svc, _, catalog := newTestService(t)
	usdPrice, _ := shared.NewMoney(1299.99, mustTestCurrency(t, "USD"))
	eurPrice, _ := shared.NewMoney(20, mustTestCurrency(t, "EUR"))
	catalog.Set("LAPTOP-001", usdPrice)
	catalog.Set("MOUSE-001", eurPrice)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := svc.AddItemToOrder(context.Background(), AddItemInput{OrderID: created.OrderID, ProductID: "LAPTOP-001", Quantity: 1}); err != nil {
		t.Fatalf("first AddItemToOrder failed: %v", err)
	}

	_, err = svc.AddItemToOrder(context.Background(), AddItemInput{OrderID: created.OrderID, ProductID: "MOUSE-001", Quantity: 1})
	if err == nil {
		t.Fatal("AddItemToOrder with a mismatched currency succeeded, want error")
	}
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("error kind = %v, want KindValidation", err)
	}
	if !strings.Contains(err.Error(), "EUR") {
		t.Fatalf("error message %q does not mention the offending currency", err.Error())
	}
}

// TestCreateOrder_DuplicateID is S5: a second CreateOrder for the same id
// fails with a conflict error.
func TestCreateOrder_DuplicateID(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{OrderID: "ORD-DUP"}); err != nil {
		t.Fatalf("first CreateOrder failed: %v", err)
	}

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{OrderID: "ORD-DUP"})
	if err == nil {
		t.Fatal("second CreateOrder with the same id succeeded, want conflict")
	}
	if !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("error kind = %v, want KindConflict", err)
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// TestCreateOrder_UsesInjectedClock is the service-level demonstration of
// why ports.Clock is a port at all: CreateOrder stamps CreatedAt from
// whatever clock the Service was built with, not from time.Now(), so a test
// can assert an exact instant instead of "close to now".
func TestCreateOrder_UsesInjectedClock(t *testing.T) {
	want := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	repo := memory.NewOrderRepository()
	sink := memory.NewNoopEventSink(false)
	svc := NewService(repo, pricing.NewStaticCatalog(), sink, noopLogger{}, fixedClock{t: want})

	out, err := svc.CreateOrder(context.Background(), CreateOrderInput{})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	got, err := time.Parse(time.RFC3339, out.CreatedAt)
	if err != nil {
		t.Fatalf("CreatedAt %q did not parse as RFC3339: %v", out.CreatedAt, err)
	}
	if !got.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", got, want)
	}
}

func mustTestCurrency(t *testing.T, code string) shared.Currency {
	t.Helper()
	c, err := shared.NewCurrency(code)
	if err != nil {
		t.Fatalf("NewCurrency(%q) failed: %v", code, err)
	}
	return c
}
