package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phoneshop/backend/internal/domain/cart"
	"github.com/phoneshop/backend/internal/domain/catalog"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest replaces a cart line's quantity
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ItemResponse is one cart line joined with its product
type ItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSlug  string    `json:"product_slug"`
	ProductImage string    `json:"product_image,omitempty"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	LineTotal    string    `json:"line_total"`
	InStock      bool      `json:"in_stock"`
}

// CartResponse is the user's full cart
type CartResponse struct {
	Items     []ItemResponse `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  string         `json:"subtotal"`
}

// ToItemResponse joins a cart line with its product
func ToItemResponse(item cart.CartItem, product catalog.Product) ItemResponse {
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	return ItemResponse{
		ID:           item.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductSlug:  product.Slug,
		ProductImage: image,
		UnitPrice:    product.Price.StringFixed(2),
		Quantity:     item.Quantity,
		LineTotal:    product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		InStock:      product.CanFulfill(item.Quantity),
	}
}
