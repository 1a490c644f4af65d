package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phoneshop/backend/internal/domain/shared"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

// Status represents the fulfillment status of an order
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is a valid order Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	if target == StatusCancelled {
		// Any order that has not been delivered can still be cancelled
		return s != StatusDelivered && s != StatusCancelled
	}
	switch s {
	case StatusPending:
		return target == StatusConfirmed
	case StatusConfirmed:
		return target == StatusProcessing
	case StatusProcessing:
		return target == StatusShipped
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus represents the payment status of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// CanTransitionTo checks if the payment status can transition to the target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusPaid:
		return target == PaymentStatusRefunded
	case PaymentStatusFailed, PaymentStatusRefunded:
		return false
	}
	return false
}

// Item is an immutable line item on an order. Product name, SKU, display
// fields and price are snapshotted at checkout so later catalog edits never
// change the order.
type Item struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName   string          `gorm:"type:varchar(200);not null"`
	ProductSKU    string          `gorm:"type:varchar(50);not null"`
	ProductSlug   string          `gorm:"type:varchar(200);not null;default:''"`
	ProductImages []string        `gorm:"type:jsonb;serializer:json"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity      int             `gorm:"not null"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt     time.Time
}

func (Item) TableName() string {
	return "order_items"
}

// ItemSnapshot carries the product fields frozen onto an order line
type ItemSnapshot struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
	Slug      string
	Images    []string
	UnitPrice decimal.Decimal
}

// NewItem creates an order line item with a price and display snapshot
func NewItem(orderID uuid.UUID, snapshot ItemSnapshot, quantity int) (*Item, error) {
	if snapshot.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if snapshot.Name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if snapshot.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Item{
		ID:            uuid.New(),
		OrderID:       orderID,
		ProductID:     snapshot.ProductID,
		ProductName:   snapshot.Name,
		ProductSKU:    snapshot.SKU,
		ProductSlug:   snapshot.Slug,
		ProductImages: snapshot.Images,
		UnitPrice:     snapshot.UnitPrice,
		Quantity:      quantity,
		LineTotal:     snapshot.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		CreatedAt:     time.Now(),
	}, nil
}

// Order is the aggregate root for a customer order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string               `gorm:"type:varchar(40);not null;uniqueIndex"`
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	Items           []Item               `gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Tax             decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Shipping        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null;default:'TRY'"`
	Status          Status               `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentStatus   PaymentStatus        `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentMethod   string               `gorm:"type:varchar(40)"`
	ShippingAddress valueobject.Address  `gorm:"type:jsonb"`
	BillingAddress  valueobject.Address  `gorm:"type:jsonb"`
	TrackingNumber  string               `gorm:"type:varchar(100)"`
	CancelReason    string               `gorm:"type:varchar(500)"`
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
}

func (Order) TableName() string {
	return "orders"
}

// NewOrder assembles a pending order from priced items and address snapshots.
// The item list must be non-empty and the quote must match the item subtotal.
// An empty billing address falls back to the shipping address.
func NewOrder(userID uuid.UUID, shipping, billing valueobject.Address, items []Item, quote Quote, paymentMethod string) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.ErrEmptyCart
	}
	if err := shipping.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if billing.IsEmpty() {
		billing = shipping
	} else if err := billing.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	if !subtotal.Round(2).Equal(quote.Subtotal.Amount()) {
		return nil, shared.NewDomainError("QUOTE_MISMATCH", "Quote subtotal does not match order items")
	}

	currency := quote.Total.Currency()
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       GenerateOrderNumber(),
		UserID:            userID,
		Items:             items,
		Subtotal:          quote.Subtotal.Amount(),
		Tax:               quote.Tax.Amount(),
		Shipping:          quote.Shipping.Amount(),
		Total:             quote.Total.Amount(),
		Currency:          currency,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		PaymentMethod:     paymentMethod,
		ShippingAddress:   shipping,
		BillingAddress:    billing,
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// MarkPaid records a successful payment and confirms the order
func (o *Order) MarkPaid() error {
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusPaid) {
		return shared.NewDomainError("INVALID_PAYMENT_STATE", "Order payment is not pending")
	}
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be confirmed from status "+o.Status.String())
	}

	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &now
	o.Status = StatusConfirmed
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (o *Order) MarkPaymentFailed(reason string) error {
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusFailed) {
		return shared.NewDomainError("INVALID_PAYMENT_STATE", "Order payment is not pending")
	}

	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaymentFailedEvent(o, reason))

	return nil
}

// MarkProcessing moves a confirmed order into fulfillment
func (o *Order) MarkProcessing() error {
	return o.transition(StatusProcessing)
}

// Ship marks the order as shipped with a carrier tracking number
func (o *Order) Ship(trackingNumber string) error {
	if trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot be empty")
	}
	if err := o.transition(StatusShipped); err != nil {
		return err
	}

	now := time.Now()
	o.TrackingNumber = trackingNumber
	o.ShippedAt = &now

	o.AddDomainEvent(NewOrderShippedEvent(o))

	return nil
}

// Deliver marks the order as delivered
func (o *Order) Deliver() error {
	if err := o.transition(StatusDelivered); err != nil {
		return err
	}

	now := time.Now()
	o.DeliveredAt = &now

	return nil
}

// Cancel cancels the order. Delivered orders cannot be cancelled.
// A paid order is refunded as part of cancellation.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("CANNOT_CANCEL", "Order cannot be cancelled from status "+o.Status.String())
	}

	now := time.Now()
	oldStatus := o.Status
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &now
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, oldStatus, reason))

	return nil
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Order cannot move from "+o.Status.String()+" to "+target.String())
	}

	oldStatus := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, oldStatus, target))

	return nil
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// ItemCount returns the number of distinct lines on the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the total number of units on the order
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TotalMoney returns the grand total in the order's stored currency
func (o *Order) TotalMoney() valueobject.Money {
	currency := o.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	m, _ := valueobject.NewMoney(o.Total, currency)
	return m
}
