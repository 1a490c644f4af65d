package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsufficientStockError reports a reservation that could not be satisfied.
// Available carries the quantity on hand at the time of the attempt so the
// caller can surface it to the customer.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// StockLedger is the port for atomic stock movements. Implementations must
// guarantee that a reservation never drives quantity below zero, even under
// concurrent checkouts for the same product.
type StockLedger interface {
	// Reserve atomically decrements stock for an active product.
	// Returns *InsufficientStockError when the quantity on hand is short,
	// shared.ErrNotFound when the product does not exist, and a state
	// error naming the product when it is inactive.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) error

	// Release atomically returns previously reserved stock, used when an
	// order is cancelled.
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}
