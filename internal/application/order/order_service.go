package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/application/checkout"
	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// OrderService serves order queries and lifecycle transitions after
// checkout. Cancellation restocks the reserved units in the same
// transaction that flips the order status.
type OrderService struct {
	orderRepo order.Repository
	txScope   checkout.TransactionScope
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, txScope checkout.TransactionScope, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		logger:    logger,
	}
}

// GetForUser returns an order owned by the given user
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		// Treat another user's order as missing rather than forbidden
		return nil, shared.ErrNotFound
	}
	response := ToResponse(o)
	return &response, nil
}

// GetByNumberForUser returns an order by its order number, scoped to the user
func (s *OrderService) GetByNumberForUser(ctx context.Context, userID uuid.UUID, orderNumber string) (*Response, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	response := ToResponse(o)
	return &response, nil
}

// ListForUser returns the user's orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) (*shared.Paginated[SummaryResponse], error) {
	f := toSharedFilter(filter)

	orders, err := s.orderRepo.FindByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]SummaryResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToSummaryResponse(&orders[i]))
	}

	result := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &result, nil
}

// CancelForUser cancels an order on behalf of its owner
func (s *OrderService) CancelForUser(ctx context.Context, userID, orderID uuid.UUID, req CancelRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return s.cancel(ctx, o, req.Reason)
}

// Cancel cancels any order (admin surface)
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, o, req.Reason)
}

// cancel flips the order to CANCELLED and returns the reserved stock,
// both inside one transaction. A paid order is marked refunded by the
// aggregate as part of the transition.
func (s *OrderService) cancel(ctx context.Context, o *order.Order, reason string) (*Response, error) {
	if reason == "" {
		reason = "cancelled by request"
	}
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}

	err := s.txScope.Execute(ctx, func(repos checkout.TransactionalRepositories) error {
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := repos.StockLedger().Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
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

	s.logger.Info("order cancelled",
		zap.String("order_number", o.OrderNumber),
		zap.String("reason", reason))

	response := ToResponse(o)
	return &response, nil
}

// ListAll returns orders across all users (admin surface)
func (s *OrderService) ListAll(ctx context.Context, filter ListFilter) (*shared.Paginated[SummaryResponse], error) {
	f := toSharedFilter(filter)

	orders, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	responses := make([]SummaryResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToSummaryResponse(&orders[i]))
	}

	result := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &result, nil
}

// Get returns any order by ID (admin surface)
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToResponse(o)
	return &response, nil
}

// UpdateStatus moves an order along the fulfillment flow (admin surface)
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status(req.Status) {
	case order.StatusProcessing:
		err = o.MarkProcessing()
	case order.StatusShipped:
		err = o.Ship(req.TrackingNumber)
	case order.StatusDelivered:
		err = o.Deliver()
	default:
		err = shared.NewDomainError("INVALID_STATUS", "Unknown target status")
	}
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos checkout.TransactionalRepositories) error {
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
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

	response := ToResponse(o)
	return &response, nil
}

// UpdatePaymentStatus settles an order's payment out of band, used when
// the provider outcome arrives through a callback or manual correction
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, req UpdatePaymentStatusRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.PaymentStatus(req.Status) {
	case order.PaymentStatusPaid:
		err = o.MarkPaid()
	case order.PaymentStatusFailed:
		err = o.MarkPaymentFailed(req.Reason)
	default:
		err = shared.NewDomainError("INVALID_PAYMENT_STATE", "Unknown target payment status")
	}
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos checkout.TransactionalRepositories) error {
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
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

	response := ToResponse(o)
	return &response, nil
}

func toSharedFilter(filter ListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	return f
}
