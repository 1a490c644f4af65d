package cart

import (
	"github.com/google/uuid"

	"github.com/phoneshop/backend/internal/domain/shared"
)

// MaxQuantityPerItem caps how many units of one product a cart may hold
const MaxQuantityPerItem = 99

// CartItem is one product line in a user's cart.
// The pair (UserID, ProductID) is unique, adding the same product again
// increments the existing line instead of creating a new one.
type CartItem struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product,priority:2"`
	Quantity  int       `gorm:"not null"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem creates a new cart line
func NewCartItem(userID, productID uuid.UUID, quantity int) (*CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// IncreaseQuantity adds units to the line
func (i *CartItem) IncreaseQuantity(delta int) error {
	if delta <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity increase must be positive")
	}
	return i.setQuantity(i.Quantity + delta)
}

// SetQuantity replaces the line quantity
func (i *CartItem) SetQuantity(quantity int) error {
	return i.setQuantity(quantity)
}

func (i *CartItem) setQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = quantity
	i.Touch()
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
	}
	return nil
}
