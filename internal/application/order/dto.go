package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domainorder "github.com/storefront/backend/internal/domain/order"
)

// OrderItemResponse is one product line of an order
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// StatusChangeResponse is one entry of an order's status history
type StatusChangeResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// OrderResponse is a full order with items and status history
type OrderResponse struct {
	ID            uuid.UUID              `json:"id"`
	OrderNo       string                 `json:"order_no"`
	PaymentID     uuid.UUID              `json:"payment_id"`
	Status        string                 `json:"status"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Tax           decimal.Decimal        `json:"tax"`
	Shipping      decimal.Decimal        `json:"shipping"`
	Total         decimal.Decimal        `json:"total"`
	TrackingRef   string                 `json:"tracking_ref,omitempty"`
	Items         []OrderItemResponse    `json:"items"`
	StatusChanges []StatusChangeResponse `json:"status_changes"`
	CreatedAt     time.Time              `json:"created_at"`
}

// OrderSummaryResponse is the list view of an order
type OrderSummaryResponse struct {
	ID        uuid.UUID       `json:"id"`
	OrderNo   string          `json:"order_no"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	CreatedAt time.Time       `json:"created_at"`
}

// UpdateStatusRequest moves an order along the fulfilment state machine
type UpdateStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	Note        string `json:"note" binding:"max=255"`
	TrackingRef string `json:"tracking_ref" binding:"max=64"`
}

func toOrderResponse(o *domainorder.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		PaymentID:     o.PaymentID,
		Status:        o.Status.String(),
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Shipping:      o.ShippingFee,
		Total:         o.Total,
		TrackingRef:   o.TrackingRef,
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
		StatusChanges: make([]StatusChangeResponse, 0, len(o.StatusChanges)),
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
	for _, change := range o.StatusChanges {
		resp.StatusChanges = append(resp.StatusChanges, StatusChangeResponse{
			From:      change.FromStatus.String(),
			To:        change.ToStatus.String(),
			Note:      change.Note,
			ChangedAt: change.CreatedAt,
		})
	}
	return resp
}

func toOrderSummary(o *domainorder.Order) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		Status:    o.Status.String(),
		Total:     o.Total,
		ItemCount: len(o.Items),
		CreatedAt: o.CreatedAt,
	}
}
