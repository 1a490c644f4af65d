package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/domain/cart"
	"github.com/phoneshop/backend/internal/domain/catalog"
	"github.com/phoneshop/backend/internal/domain/inventory"
	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// checkoutLockTTL bounds how long a checkout may hold the per-user lock
const checkoutLockTTL = 30 * time.Second

// CheckoutService places orders. It is the only writer that turns a cart
// into an order. Stock reservation, order insert and cart clearing commit
// or roll back as one unit inside the transaction scope. Payment
// confirmation and notifications run asynchronously off the outbox, the
// checkout response never waits for them.
type CheckoutService struct {
	productRepo catalog.ProductRepository
	cartRepo    cart.Repository
	txScope     TransactionScope
	idempotency IdempotencyStore
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	productRepo catalog.ProductRepository,
	cartRepo cart.Repository,
	txScope TransactionScope,
	idempotency IdempotencyStore,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		productRepo: productRepo,
		cartRepo:    cartRepo,
		txScope:     txScope,
		idempotency: idempotency,
		logger:      logger,
	}
}

// Quote prices the user's current cart without placing an order
func (s *CheckoutService) Quote(ctx context.Context, userID uuid.UUID) (*QuoteResponse, error) {
	items, products, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]order.QuoteLine, 0, len(items))
	responses := make([]CheckoutItemResponse, 0, len(items))
	for _, item := range items {
		product := products[item.ProductID]
		lines = append(lines, order.QuoteLine{UnitPrice: product.Price, Quantity: item.Quantity})
		responses = append(responses, CheckoutItemResponse{
			ProductID:     product.ID,
			ProductName:   product.Name,
			ProductSKU:    product.SKU,
			ProductSlug:   product.Slug,
			ProductImages: product.Images,
			UnitPrice:     product.Price.StringFixed(2),
			Quantity:      item.Quantity,
			LineTotal:     product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		})
	}

	quote := order.CalculateQuote(lines)
	return &QuoteResponse{
		Items:    responses,
		Subtotal: quote.Subtotal.StringFixed(2),
		Tax:      quote.Tax.StringFixed(2),
		Shipping: quote.Shipping.StringFixed(2),
		Total:    quote.Total.StringFixed(2),
	}, nil
}

// Checkout turns the user's cart into an order and charges it.
// The flow is: take the per-user submission lock, snapshot and price the
// cart, then atomically reserve stock, insert the order, clear the cart
// and stage the created event for dispatch. Payment runs after the commit.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	lockKey := "checkout:" + userID.String()
	acquired, err := s.idempotency.Acquire(ctx, lockKey, checkoutLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.NewDomainError("CHECKOUT_IN_PROGRESS", "A checkout is already in progress for this user")
	}
	defer func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Warn("failed to release checkout lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	cartItems, products, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	orderItems := make([]order.Item, 0, len(cartItems))
	lines := make([]order.QuoteLine, 0, len(cartItems))
	for _, ci := range cartItems {
		product := products[ci.ProductID]
		item, err := order.NewItem(uuid.Nil, order.ItemSnapshot{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Slug:      product.Slug,
			Images:    product.Images,
			UnitPrice: product.Price,
		}, ci.Quantity)
		if err != nil {
			return nil, err
		}
		orderItems = append(orderItems, *item)
		lines = append(lines, order.QuoteLine{UnitPrice: product.Price, Quantity: ci.Quantity})
	}

	quote := order.CalculateQuote(lines)
	o, err := order.NewOrder(userID, req.ShippingAddress, req.BillingAddress, orderItems, quote, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, item := range o.Items {
			if err := repos.StockLedger().Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				var stockErr *inventory.InsufficientStockError
				if errors.As(err, &stockErr) {
					s.logger.Info("checkout rejected, insufficient stock",
						zap.String("user_id", userID.String()),
						zap.String("product_id", stockErr.ProductID.String()),
						zap.Int("requested", stockErr.Requested),
						zap.Int("available", stockErr.Available))
				}
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}

		if err := repos.CartRepo().DeleteByUser(ctx, userID); err != nil {
			return err
		}

		entries, err := shared.NewOutboxEntries(o.GetDomainEvents()...)
		if err != nil {
			return err
		}
		return repos.OutboxRepo().Save(ctx, entries...)
	})
	if err != nil {
		return nil, err
	}
	o.ClearDomainEvents()

	s.logger.Info("order placed",
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", o.Total.StringFixed(2)))

	response := ToCheckoutResponse(o)
	return &response, nil
}

// loadCart fetches the cart lines and their products, rejecting empty
// carts and lines whose product is gone or inactive
func (s *CheckoutService) loadCart(ctx context.Context, userID uuid.UUID) ([]cart.CartItem, map[uuid.UUID]catalog.Product, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, shared.ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, shared.NewDomainError("PRODUCT_NOT_FOUND",
				"Product "+item.ProductID.String()+" is no longer in the catalog")
		}
		if !product.IsActive() {
			return nil, nil, shared.NewDomainError("PRODUCT_INACTIVE",
				"Product "+product.Name+" is not available for purchase")
		}
	}

	return items, byID, nil
}
