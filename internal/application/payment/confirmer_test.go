package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/application/checkout"
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

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Charge(ctx context.Context, orderID uuid.UUID, amount valueobject.Money, method string) (checkout.PaymentResult, error) {
	args := m.Called(ctx, orderID, amount, method)
	return args.Get(0).(checkout.PaymentResult), args.Error(1)
}

type confirmerFixture struct {
	orderRepo  *mockOrderRepo
	outboxRepo *mockOutboxRepo
	provider   *mockProvider
	confirmer  *Confirmer
}

func newConfirmerFixture() *confirmerFixture {
	f := &confirmerFixture{
		orderRepo:  new(mockOrderRepo),
		outboxRepo: new(mockOutboxRepo),
		provider:   new(mockProvider),
	}
	scope := checkout.NewNoOpTransactionScope(f.orderRepo, nil, nil, f.outboxRepo)
	f.confirmer = NewConfirmer(f.orderRepo, scope, f.provider, 10*time.Second, zap.NewNop())
	return f
}

func pendingOrder(t *testing.T) (*order.Order, shared.DomainEvent) {
	t.Helper()

	item, err := order.NewItem(uuid.Nil, order.ItemSnapshot{
		ProductID: uuid.New(),
		Name:      "Aurora X5",
		SKU:       "PHN-2001",
		Slug:      "aurora-x5",
		UnitPrice: decimal.NewFromInt(1000),
	}, 1)
	require.NoError(t, err)

	addr := valueobject.Address{
		FullName: "Ayşe Yılmaz",
		Phone:    "+905551234567",
		Line1:    "İstiklal Cad. No:1",
		City:     "İstanbul",
		Country:  "TR",
	}
	quote := order.QuoteFromSubtotal(item.LineTotal)
	o, err := order.NewOrder(uuid.New(), addr, valueobject.Address{}, []order.Item{*item}, quote, "credit_card")
	require.NoError(t, err)

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	created := events[0]
	o.ClearDomainEvents()
	return o, created
}

func TestConfirmerEventTypes(t *testing.T) {
	f := newConfirmerFixture()
	assert.Equal(t, []string{order.EventTypeOrderCreated}, f.confirmer.EventTypes())
}

func TestConfirmerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("successful charge confirms the order", func(t *testing.T) {
		f := newConfirmerFixture()
		o, created := pendingOrder(t)

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.provider.On("Charge", mock.Anything, o.ID, mock.Anything, "credit_card").
			Return(checkout.PaymentResult{TransactionID: "SIM-1", Succeeded: true}, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.confirmer.Handle(ctx, created))

		assert.Equal(t, order.StatusConfirmed, o.Status)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		assert.NotNil(t, o.PaidAt)
		assert.Empty(t, o.GetDomainEvents())
		f.outboxRepo.AssertCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("declined charge marks payment failed and does not retry", func(t *testing.T) {
		f := newConfirmerFixture()
		o, created := pendingOrder(t)

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.provider.On("Charge", mock.Anything, o.ID, mock.Anything, mock.Anything).
			Return(checkout.PaymentResult{Succeeded: false, FailureReason: "declined by issuer"}, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(nil)
		f.outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.confirmer.Handle(ctx, created))

		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
	})

	t.Run("provider error is returned for redelivery", func(t *testing.T) {
		f := newConfirmerFixture()
		o, created := pendingOrder(t)

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.provider.On("Charge", mock.Anything, o.ID, mock.Anything, mock.Anything).
			Return(checkout.PaymentResult{}, errors.New("gateway timeout"))

		err := f.confirmer.Handle(ctx, created)
		assert.EqualError(t, err, "gateway timeout")

		assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
		f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("settled order is not charged again", func(t *testing.T) {
		f := newConfirmerFixture()
		o, created := pendingOrder(t)
		require.NoError(t, o.MarkPaid())
		o.ClearDomainEvents()

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		require.NoError(t, f.confirmer.Handle(ctx, created))
		f.provider.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save failure is returned for redelivery", func(t *testing.T) {
		f := newConfirmerFixture()
		o, created := pendingOrder(t)

		f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.provider.On("Charge", mock.Anything, o.ID, mock.Anything, mock.Anything).
			Return(checkout.PaymentResult{TransactionID: "SIM-2", Succeeded: true}, nil)
		f.orderRepo.On("Save", mock.Anything, o).Return(errors.New("connection reset"))

		assert.EqualError(t, f.confirmer.Handle(ctx, created), "connection reset")
	})
}
