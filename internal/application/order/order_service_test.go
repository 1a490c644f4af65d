package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/application/checkout"
	"github.com/phoneshop/backend/internal/domain/cart"
	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepo) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockStockLedger struct {
	mock.Mock
}

func (m *mockStockLedger) Reserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *mockStockLedger) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *mockOutboxRepo) FindDispatchable(ctx context.Context, now time.Time, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *mockOutboxRepo) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// nilCartRepo satisfies the transaction scope, cancellation never touches the cart
type nilCartRepo struct{}

func (nilCartRepo) FindByUser(context.Context, uuid.UUID) ([]cart.CartItem, error) { return nil, nil }
func (nilCartRepo) FindByUserAndProduct(context.Context, uuid.UUID, uuid.UUID) (*cart.CartItem, error) {
	return nil, nil
}
func (nilCartRepo) Save(context.Context, *cart.CartItem) error    { return nil }
func (nilCartRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (nilCartRepo) DeleteByUser(context.Context, uuid.UUID) error { return nil }

type fixture struct {
	orderRepo  *mockOrderRepo
	ledger     *mockStockLedger
	outboxRepo *mockOutboxRepo
	service    *OrderService
}

func newFixture() *fixture {
	f := &fixture{
		orderRepo:  new(mockOrderRepo),
		ledger:     new(mockStockLedger),
		outboxRepo: new(mockOutboxRepo),
	}
	scope := checkout.NewNoOpTransactionScope(f.orderRepo, nilCartRepo{}, f.ledger, f.outboxRepo)
	f.service = NewOrderService(f.orderRepo, scope, zap.NewNop())
	return f
}

func placedOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	item, err := order.NewItem(uuid.Nil, order.ItemSnapshot{
		ProductID: uuid.New(),
		Name:      "Galaxy S24",
		SKU:       "PHN-001",
		Slug:      "galaxy-s24",
		UnitPrice: decimal.NewFromInt(1000),
	}, 2)
	require.NoError(t, err)

	address := valueobject.Address{
		FullName: "Ayşe Yılmaz", Phone: "+905551234567",
		Line1: "Atatürk Cad. 12", City: "İstanbul", Country: "TR",
	}
	o, err := order.NewOrder(userID, address, valueobject.Address{}, []order.Item{*item},
		order.QuoteFromSubtotal(decimal.NewFromInt(2000)), "credit_card")
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestGetForUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns own order", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, userID)
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		resp, err := f.service.GetForUser(ctx, userID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, resp.OrderNumber)
		assert.Equal(t, "360.00", resp.Tax)
		assert.Equal(t, "2360.00", resp.Total)
	})

	t.Run("hides another user's order", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.GetForUser(ctx, userID, o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCancelRestocksItems(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("cancellation releases stock and stages events", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, userID)
		productID := o.Items[0].ProductID

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.ledger.On("Release", mock.Anything, productID, 2).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.CancelForUser(ctx, userID, o.ID, CancelRequest{Reason: "changed my mind"})
		require.NoError(t, err)

		assert.Equal(t, order.StatusCancelled.String(), resp.Status)
		assert.Equal(t, "changed my mind", resp.CancelReason)
		f.ledger.AssertCalled(t, "Release", mock.Anything, productID, 2)
	})

	t.Run("delivered order cannot be cancelled", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, userID)
		require.NoError(t, o.MarkPaid())
		require.NoError(t, o.MarkProcessing())
		require.NoError(t, o.Ship("TRK-1"))
		require.NoError(t, o.Deliver())
		o.ClearDomainEvents()

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.CancelForUser(ctx, userID, o.ID, CancelRequest{})
		require.Error(t, err)
		f.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid order reports refund on cancel", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, userID)
		require.NoError(t, o.MarkPaid())
		o.ClearDomainEvents()

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.ledger.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Cancel(ctx, o.ID, CancelRequest{Reason: "stock issue"})
		require.NoError(t, err)
		assert.Equal(t, string(order.PaymentStatusRefunded), resp.PaymentStatus)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the fulfillment flow", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		require.NoError(t, o.MarkPaid())
		o.ClearDomainEvents()

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "PROCESSING"})
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing.String(), resp.Status)

		resp, err = f.service.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "SHIPPED", TrackingNumber: "TRK-99"})
		require.NoError(t, err)
		assert.Equal(t, "TRK-99", resp.TrackingNumber)
	})

	t.Run("shipping requires a tracking number", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		require.NoError(t, o.MarkPaid())
		require.NoError(t, o.MarkProcessing())
		o.ClearDomainEvents()

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "SHIPPED"})
		require.Error(t, err)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, o.ID, UpdateStatusRequest{Status: "DELIVERED"})
		require.Error(t, err)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("settles the payment as paid", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdatePaymentStatus(ctx, o.ID, UpdatePaymentStatusRequest{Status: "PAID"})
		require.NoError(t, err)
		assert.Equal(t, string(order.PaymentStatusPaid), resp.PaymentStatus)
		assert.Equal(t, order.StatusConfirmed.String(), resp.Status)
	})

	t.Run("records a failed payment with its reason", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.UpdatePaymentStatus(ctx, o.ID, UpdatePaymentStatusRequest{Status: "FAILED", Reason: "card declined"})
		require.NoError(t, err)
		assert.Equal(t, string(order.PaymentStatusFailed), resp.PaymentStatus)
		assert.Equal(t, order.StatusPending.String(), resp.Status)
	})

	t.Run("rejects an unknown target state", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.UpdatePaymentStatus(ctx, o.ID, UpdatePaymentStatusRequest{Status: "REFUNDED"})
		require.Error(t, err)
		f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("already paid order cannot be paid again", func(t *testing.T) {
		f := newFixture()
		o := placedOrder(t, uuid.New())
		require.NoError(t, o.MarkPaid())
		o.ClearDomainEvents()

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.UpdatePaymentStatus(ctx, o.ID, UpdatePaymentStatusRequest{Status: "PAID"})
		require.Error(t, err)
	})
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newFixture()

	o := placedOrder(t, userID)
	f.orderRepo.On("FindByUser", mock.Anything, userID, mock.Anything).Return([]order.Order{*o}, nil)
	f.orderRepo.On("CountByUser", mock.Anything, userID).Return(int64(1), nil)

	page, err := f.service.ListForUser(ctx, userID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, o.OrderNumber, page.Items[0].OrderNumber)
	assert.Equal(t, 1, page.Items[0].ItemCount)
}
