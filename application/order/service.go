package order

import (
	"context"
	"errors"
	"time"

	domainorder "github.com/gmartincasals/clean-orders/domain/order"
	"github.com/gmartincasals/clean-orders/domain/shared"
	apperrors "github.com/gmartincasals/clean-orders/pkg/errors"
	"github.com/gmartincasals/clean-orders/ports"
)

// Service implements the two use cases this core exposes: CreateOrder and
// AddItemToOrder. It depends only on the narrow ports — Repository,
// Pricing, EventSink, Logger — never on a concrete adapter.
type Service struct {
	repo    domainorder.Repository
	pricing ports.Pricing
	sink    ports.EventSink
	log     ports.Logger
	clock   ports.Clock
}

// NewService wires a Service from its ports. clock defaults to
// ports.SystemClock{} when nil; tests pass a fake to control "now" without
// sleeping.
func NewService(repo domainorder.Repository, pricing ports.Pricing, sink ports.EventSink, log ports.Logger, clock ports.Clock) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Service{repo: repo, pricing: pricing, sink: sink, log: log, clock: clock}
}

// CreateOrder implements §4.7's CreateOrder use case.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	var id *shared.OrderId
	if input.OrderID != "" {
		oid, err := shared.NewOrderId(input.OrderID)
		if err != nil {
			return nil, apperrors.FromDomainError(err)
		}
		id = &oid
	}
	// input.OrderID == "" (absent or empty string) falls through with id
	// == nil, meaning "generate one" (Q2).

	if id != nil {
		exists, err := s.repo.Exists(ctx, id.String())
		if err != nil {
			return nil, apperrors.InfraErrorFrom("failed to check order existence", err)
		}
		if exists {
			return nil, apperrors.ConflictErrorWith("order already exists", "duplicate_order_id")
		}
	}

	agg := domainorder.Create(id, s.clock)

	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, apperrors.InfraErrorFrom("failed to save order", err)
	}

	s.drainAndPublish(ctx, agg)

	items, total := buildView(agg)
	return &CreateOrderOutput{OrderID: agg.ID(), Items: items, Total: total, CreatedAt: agg.CreatedAt().UTC().Format(time.RFC3339)}, nil
}

// AddItemToOrder implements §4.7's AddItemToOrder use case.
func (s *Service) AddItemToOrder(ctx context.Context, input AddItemInput) (*AddItemOutput, error) {
	orderID, err := shared.NewOrderId(input.OrderID)
	if err != nil {
		return nil, apperrors.FromDomainError(err)
	}
	productID, err := shared.NewProductId(input.ProductID)
	if err != nil {
		return nil, apperrors.FromDomainError(err)
	}
	quantity, err := shared.NewQuantityFromInt(input.Quantity)
	if err != nil {
		return nil, apperrors.FromDomainError(err)
	}

	agg, err := s.repo.FindByID(ctx, orderID.String())
	if err != nil {
		return nil, apperrors.InfraErrorFrom("failed to load order", err)
	}
	if agg == nil {
		return nil, apperrors.NotFoundErrorFor("Order", orderID.String())
	}
	agg.SetClock(s.clock)

	price, err := s.pricing.PriceFor(ctx, productID.String())
	if err != nil {
		if errors.Is(err, ports.ErrProductNotPriced) {
			return nil, apperrors.NotFoundErrorFor("Product", productID.String())
		}
		return nil, apperrors.InfraErrorFrom("failed to look up price", err)
	}

	if err := agg.AddItem(productID, quantity, price); err != nil {
		return nil, apperrors.FromDomainError(err)
	}

	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, apperrors.InfraErrorFrom("failed to save order", err)
	}

	s.drainAndPublish(ctx, agg)

	items, total := buildView(agg)
	return &AddItemOutput{OrderID: agg.ID(), Items: items, Total: total, CreatedAt: agg.CreatedAt().UTC().Format(time.RFC3339)}, nil
}

// drainAndPublish pulls any events still buffered on agg and hands them to
// the sink. For a transactional repository these are already empty and
// durable (drained and written inside Save's own transaction); for the
// in-memory repository this is the only delivery path. Either way, a sink
// failure here is logged and never fails the use case — the write already
// committed, and recovery (when an outbox exists) is the dispatcher's job.
func (s *Service) drainAndPublish(ctx context.Context, agg *domainorder.Order) {
	events := agg.PullEvents()
	if len(events) == 0 {
		return
	}
	if err := s.sink.PublishAll(ctx, events); err != nil {
		s.log.Warn("failed to publish events after commit", "error", err, "orderId", agg.ID())
	}
}
