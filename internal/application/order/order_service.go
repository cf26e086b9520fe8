package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	domainorder "github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderService handles order queries and fulfilment updates
type OrderService struct {
	orderRepo    domainorder.OrderRepository
	paymentRepo  payment.PaymentRecordRepository
	materializer *Materializer
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo domainorder.OrderRepository, paymentRepo payment.PaymentRecordRepository, materializer *Materializer) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		materializer: materializer,
	}
}

// CompleteCheckout is the redirect landing after the gateway's hosted
// page. It materializes the caller's latest open payment, or returns
// the order the webhook already produced for it.
func (s *OrderService) CompleteCheckout(ctx context.Context, owner identity.Identity) (*OrderResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.paymentRepo.FindLatestUnpaid(ctx, owner)
	if err == nil {
		return s.materializer.Materialize(ctx, rec.ID, "")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	// No open payment: the webhook won the race. Hand back the newest order.
	filter := shared.DefaultFilter()
	filter.PageSize = 1
	orders, err := s.orderRepo.FindByOwner(ctx, owner, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, shared.ErrNotFound
	}
	return toOrderResponse(&orders[0]), nil
}

// History lists the owner's orders, newest first
func (s *OrderService) History(ctx context.Context, owner identity.Identity, filter shared.Filter) (*shared.Paginated[OrderSummaryResponse], error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindByOwner(ctx, owner, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummaryResponse, 0, len(orders))
	for i := range orders {
		summaries = append(summaries, toOrderSummary(&orders[i]))
	}
	result := shared.NewPaginated(summaries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Detail returns one of the owner's orders with items and history
func (s *OrderService) Detail(ctx context.Context, owner identity.Identity, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Owner() != owner {
		return nil, shared.ErrForbidden
	}
	return toOrderResponse(o), nil
}

// UpdateStatus moves an order along the fulfilment state machine and
// records the transition. A tracking reference may be attached at the
// same time, typically when the order ships.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateStatus(domainorder.OrderStatus(req.Status), req.Note); err != nil {
		return nil, err
	}
	if req.TrackingRef != "" {
		o.SetTrackingRef(req.TrackingRef)
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}
