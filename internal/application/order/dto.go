package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

// CancelRequest cancels an order
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateStatusRequest moves an order along the fulfillment flow (admin)
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=PROCESSING SHIPPED DELIVERED"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
}

// UpdatePaymentStatusRequest settles an order's payment out of band,
// the admin equivalent of a provider callback
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PAID FAILED"`
	Reason string `json:"reason" binding:"max=500"`
}

// ListFilter filters order listings
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

// ItemResponse is one line of an order
type ItemResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	ProductSlug   string    `json:"product_slug"`
	ProductImages []string  `json:"product_images,omitempty"`
	UnitPrice     string    `json:"unit_price"`
	Quantity      int       `json:"quantity"`
	LineTotal     string    `json:"line_total"`
}

// Response is the API shape of an order
type Response struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	PaymentMethod   string              `json:"payment_method"`
	Items           []ItemResponse      `json:"items"`
	Subtotal        string              `json:"subtotal"`
	Tax             string              `json:"tax"`
	Shipping        string              `json:"shipping"`
	Total           string              `json:"total"`
	Currency        string              `json:"currency"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	BillingAddress  valueobject.Address `json:"billing_address"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
}

// SummaryResponse is the list shape of an order
type SummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	ItemCount     int       `json:"item_count"`
	Total         string    `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse maps an order aggregate to the full API response
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductSKU:    item.ProductSKU,
			ProductSlug:   item.ProductSlug,
			ProductImages: item.ProductImages,
			UnitPrice:     item.UnitPrice.StringFixed(2),
			Quantity:      item.Quantity,
			LineTotal:     item.LineTotal.StringFixed(2),
		})
	}

	return Response{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status.String(),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   o.PaymentMethod,
		Items:           items,
		Subtotal:        o.Subtotal.StringFixed(2),
		Tax:             o.Tax.StringFixed(2),
		Shipping:        o.Shipping.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		Currency:        string(o.Currency),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		TrackingNumber:  o.TrackingNumber,
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
	}
}

// ToSummaryResponse maps an order to the list shape
func ToSummaryResponse(o *order.Order) SummaryResponse {
	return SummaryResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		PaymentStatus: string(o.PaymentStatus),
		ItemCount:     o.ItemCount(),
		Total:         o.Total.StringFixed(2),
		CreatedAt:     o.CreatedAt,
	}
}
