package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phoneshop/backend/internal/domain/catalog"
	"github.com/phoneshop/backend/internal/domain/inventory"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// GormStockLedger implements inventory.StockLedger with conditional updates.
// The decrement runs as a single UPDATE guarded by the current quantity, so
// two concurrent checkouts can never drive stock below zero.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// Reserve atomically decrements stock for an active product
func (l *GormStockLedger) Reserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}

	result := l.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND status = ? AND quantity >= ?", productID, catalog.ProductStatusActive, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// The guarded UPDATE matched nothing. Re-read to tell a missing or
	// inactive product apart from one that is short on stock.
	var product catalog.Product
	if err := l.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if !product.IsActive() {
		return shared.NewDomainError("PRODUCT_INACTIVE",
			"Product "+product.Name+" is not available for purchase")
	}

	return &inventory.InsufficientStockError{
		ProductID:   productID,
		ProductName: product.Name,
		Requested:   quantity,
		Available:   product.Quantity,
	}
}

// Release atomically returns previously reserved stock
func (l *GormStockLedger) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	result := l.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.StockLedger = (*GormStockLedger)(nil)
