package order

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

func testAddress() valueobject.Address {
	return valueobject.Address{
		FullName: "Mehmet Demir",
		Phone:    "+905559876543",
		Line1:    "Bağdat Cad. No:5",
		City:     "İstanbul",
		Country:  "TR",
	}
}

func testSnapshot(name, sku string, unitPrice decimal.Decimal) ItemSnapshot {
	return ItemSnapshot{
		ProductID: uuid.New(),
		Name:      name,
		SKU:       sku,
		Slug:      strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		UnitPrice: unitPrice,
	}
}

func testItems(t *testing.T) []Item {
	t.Helper()
	phone, err := NewItem(uuid.Nil, testSnapshot("Galaxy S24", "PHN-001", decimal.NewFromInt(1100)), 2)
	require.NoError(t, err)
	charger, err := NewItem(uuid.Nil, testSnapshot("25W Charger", "ACC-010", decimal.NewFromInt(50)), 1)
	require.NoError(t, err)
	return []Item{*phone, *charger}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	items := testItems(t)
	o, err := NewOrder(uuid.New(), testAddress(), valueobject.Address{}, items, QuoteFromSubtotal(decimal.NewFromInt(2250)), "credit_card")
	require.NoError(t, err)
	return o
}

func TestNewItem(t *testing.T) {
	t.Run("computes line total", func(t *testing.T) {
		item, err := NewItem(uuid.Nil, testSnapshot("Phone", "SKU-1", decimal.NewFromFloat(749.90)), 3)
		require.NoError(t, err)
		assert.Equal(t, "2249.70", item.LineTotal.StringFixed(2))
	})

	t.Run("keeps the display snapshot", func(t *testing.T) {
		snapshot := testSnapshot("Galaxy S24", "PHN-001", decimal.NewFromInt(1100))
		snapshot.Images = []string{"https://cdn.example.com/galaxy-s24.jpg"}

		item, err := NewItem(uuid.Nil, snapshot, 1)
		require.NoError(t, err)
		assert.Equal(t, "galaxy-s24", item.ProductSlug)
		assert.Equal(t, snapshot.Images, item.ProductImages)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		snapshot := testSnapshot("Phone", "SKU-1", decimal.NewFromInt(1))
		snapshot.ProductID = uuid.Nil
		_, err := NewItem(uuid.Nil, snapshot, 1)
		assert.Error(t, err)

		snapshot = testSnapshot("", "SKU-1", decimal.NewFromInt(1))
		_, err = NewItem(uuid.Nil, snapshot, 1)
		assert.Error(t, err)

		_, err = NewItem(uuid.Nil, testSnapshot("Phone", "SKU-1", decimal.NewFromInt(1)), 0)
		assert.Error(t, err)

		_, err = NewItem(uuid.Nil, testSnapshot("Phone", "SKU-1", decimal.NewFromInt(-1)), 1)
		assert.Error(t, err)
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("assembles pending order", func(t *testing.T) {
		o := newTestOrder(t)

		assert.Regexp(t, orderNumberPattern, o.OrderNumber)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, "2250.00", o.Subtotal.StringFixed(2))
		assert.Equal(t, "2655.00", o.Total.StringFixed(2))
		assert.Equal(t, 2, o.ItemCount())
		assert.Equal(t, 3, o.TotalQuantity())
		assert.Equal(t, valueobject.DefaultCurrency, o.Currency)

		for _, item := range o.Items {
			assert.Equal(t, o.ID, item.OrderID)
		}

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
	})

	t.Run("billing address defaults to shipping", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, o.ShippingAddress, o.BillingAddress)
	})

	t.Run("explicit billing address is kept", func(t *testing.T) {
		billing := testAddress()
		billing.FullName = "Demir Ltd. Şti."
		billing.Line1 = "Levent Mah. No:42"

		o, err := NewOrder(uuid.New(), testAddress(), billing, testItems(t), QuoteFromSubtotal(decimal.NewFromInt(2250)), "credit_card")
		require.NoError(t, err)
		assert.Equal(t, billing, o.BillingAddress)
		assert.NotEqual(t, o.ShippingAddress, o.BillingAddress)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), testAddress(), valueobject.Address{}, nil, QuoteFromSubtotal(decimal.Zero), "credit_card")
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
	})

	t.Run("rejects invalid shipping address", func(t *testing.T) {
		addr := testAddress()
		addr.City = ""
		_, err := NewOrder(uuid.New(), addr, valueobject.Address{}, testItems(t), QuoteFromSubtotal(decimal.NewFromInt(2250)), "credit_card")
		assert.Error(t, err)
	})

	t.Run("rejects incomplete billing address", func(t *testing.T) {
		billing := testAddress()
		billing.Phone = ""
		_, err := NewOrder(uuid.New(), testAddress(), billing, testItems(t), QuoteFromSubtotal(decimal.NewFromInt(2250)), "credit_card")
		assert.Error(t, err)
	})

	t.Run("rejects quote that does not match items", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), testAddress(), valueobject.Address{}, testItems(t), QuoteFromSubtotal(decimal.NewFromInt(999)), "credit_card")
		assert.Error(t, err)
	})
}

func TestOrderPayment(t *testing.T) {
	t.Run("mark paid confirms the order", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.MarkPaid())
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, StatusConfirmed, o.Status)
		assert.NotNil(t, o.PaidAt)

		assert.Error(t, o.MarkPaid())
	})

	t.Run("payment failure leaves order pending", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.MarkPaymentFailed("card declined"))
		assert.Equal(t, PaymentStatusFailed, o.PaymentStatus)
		assert.Equal(t, StatusPending, o.Status)

		assert.Error(t, o.MarkPaid())
	})
}

func TestOrderFulfillment(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.MarkPaid())

	t.Run("cannot ship before processing", func(t *testing.T) {
		assert.Error(t, o.Ship("TRK-123"))
	})

	t.Run("full happy path", func(t *testing.T) {
		require.NoError(t, o.MarkProcessing())
		require.NoError(t, o.Ship("TRK-123"))
		assert.Equal(t, "TRK-123", o.TrackingNumber)
		assert.NotNil(t, o.ShippedAt)

		require.NoError(t, o.Deliver())
		assert.Equal(t, StatusDelivered, o.Status)
		assert.True(t, o.IsTerminal())
	})

	t.Run("delivered order cannot be cancelled", func(t *testing.T) {
		assert.Error(t, o.Cancel("changed my mind"))
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("pending order cancels without refund", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.Cancel("out of stock"))
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, "out of stock", o.CancelReason)
		assert.NotNil(t, o.CancelledAt)
	})

	t.Run("paid order refunds on cancel", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkPaid())
		o.ClearDomainEvents()

		require.NoError(t, o.Cancel("customer request"))
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*OrderCancelledEvent)
		require.True(t, ok)
		assert.True(t, evt.Refunded)
	})

	t.Run("cancelled order is terminal", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel("dup"))
		assert.Error(t, o.Cancel("again"))
		assert.Error(t, o.MarkProcessing())
	})
}

func TestStatusCanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusShipped.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusShipped))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))

	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))
	assert.True(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusRefunded))
	assert.False(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusPaid))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusPaid))
}
