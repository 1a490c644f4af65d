package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

// CheckoutRequest is the input for placing an order. The billing address
// is optional and defaults to the shipping address.
type CheckoutRequest struct {
	ShippingAddress valueobject.Address `json:"shipping_address" binding:"required"`
	BillingAddress  valueobject.Address `json:"billing_address"`
	PaymentMethod   string              `json:"payment_method" binding:"required,oneof=credit_card bank_transfer cash_on_delivery"`
}

// CheckoutItemResponse is one line of a placed order
type CheckoutItemResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	ProductSlug   string    `json:"product_slug"`
	ProductImages []string  `json:"product_images,omitempty"`
	UnitPrice     string    `json:"unit_price"`
	Quantity      int       `json:"quantity"`
	LineTotal     string    `json:"line_total"`
}

// CheckoutResponse is the result of a successful checkout
type CheckoutResponse struct {
	OrderID       uuid.UUID              `json:"order_id"`
	OrderNumber   string                 `json:"order_number"`
	Status        string                 `json:"status"`
	PaymentStatus string                 `json:"payment_status"`
	Items         []CheckoutItemResponse `json:"items"`
	Subtotal      string                 `json:"subtotal"`
	Tax           string                 `json:"tax"`
	Shipping      string                 `json:"shipping"`
	Total         string                 `json:"total"`
	Currency      string                 `json:"currency"`
	CreatedAt     time.Time              `json:"created_at"`
}

// QuoteResponse is a priced preview of the current cart
type QuoteResponse struct {
	Items    []CheckoutItemResponse `json:"items"`
	Subtotal string                 `json:"subtotal"`
	Tax      string                 `json:"tax"`
	Shipping string                 `json:"shipping"`
	Total    string                 `json:"total"`
}

// ToCheckoutResponse maps an order aggregate to the API response
func ToCheckoutResponse(o *order.Order) CheckoutResponse {
	items := make([]CheckoutItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, CheckoutItemResponse{
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

	return CheckoutResponse{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		Subtotal:      o.Subtotal.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Shipping:      o.Shipping.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Currency:      string(o.Currency),
		CreatedAt:     o.CreatedAt,
	}
}
