package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/domain/cart"
	"github.com/phoneshop/backend/internal/domain/catalog"
	"github.com/phoneshop/backend/internal/domain/inventory"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// CartService manages the per-user shopping cart. Adding a product that is
// already in the cart increments the existing line, capped by the stock on
// hand at the time of the call. The authoritative stock check still happens
// at checkout.
type CartService struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.Repository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get returns the user's cart with product details
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &CartResponse{Items: []ItemResponse{}, Subtotal: "0.00"}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	responses := make([]ItemResponse, 0, len(items))
	count := 0
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Product removed from the catalog, drop the stale line
			if err := s.cartRepo.Delete(ctx, item.ID); err != nil {
				s.logger.Warn("failed to drop stale cart line",
					zap.String("cart_item_id", item.ID.String()), zap.Error(err))
			}
			continue
		}
		responses = append(responses, ToItemResponse(item, product))
		count += item.Quantity
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return &CartResponse{
		Items:     responses,
		ItemCount: count,
		Subtotal:  subtotal.StringFixed(2),
	}, nil
}

// AddItem adds a product to the cart or increments the existing line.
// The resulting quantity may not exceed the stock currently on hand.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product "+product.Name+" is not available for purchase")
	}

	existing, err := s.cartRepo.FindByUserAndProduct(ctx, userID, req.ProductID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		if !product.CanFulfill(existing.Quantity + req.Quantity) {
			return nil, insufficientStock(product, existing.Quantity+req.Quantity)
		}
		if err := existing.IncreaseQuantity(req.Quantity); err != nil {
			return nil, err
		}
		if err := s.cartRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		if !product.CanFulfill(req.Quantity) {
			return nil, insufficientStock(product, req.Quantity)
		}
		item, err := cart.NewCartItem(userID, req.ProductID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.cartRepo.Save(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, userID)
}

// UpdateItem replaces a cart line's quantity
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var target *cart.CartItem
	for i := range items {
		if items[i].ID == itemID {
			target = &items[i]
			break
		}
	}
	if target == nil {
		return nil, shared.ErrNotFound
	}

	product, err := s.productRepo.FindByID(ctx, target.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product "+product.Name+" is not available for purchase")
	}
	if !product.CanFulfill(req.Quantity) {
		return nil, insufficientStock(product, req.Quantity)
	}

	if err := target.SetQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, target); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// RemoveItem deletes a cart line owned by the user
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, item := range items {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return nil, shared.ErrNotFound
	}

	if err := s.cartRepo.Delete(ctx, itemID); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Clear removes every line from the user's cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.DeleteByUser(ctx, userID)
}

// insufficientStock reports the stock on hand so the client can show the
// real ceiling to the customer
func insufficientStock(product *catalog.Product, requested int) error {
	return &inventory.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   requested,
		Available:   product.Quantity,
	}
}
