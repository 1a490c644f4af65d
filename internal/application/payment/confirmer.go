package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/application/checkout"
	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// Confirmer settles payment for freshly placed orders. It consumes
// OrderCreated from the outbox stream, so a slow provider never blocks
// the checkout response and the outbox processor owns the retry policy
// for provider outages. Follow-on events (OrderPaid, OrderPaymentFailed)
// go back through the outbox in the same transaction as the order update.
type Confirmer struct {
	orderRepo order.Repository
	txScope   checkout.TransactionScope
	provider  checkout.PaymentProvider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewConfirmer creates a payment confirmer
func NewConfirmer(
	orderRepo order.Repository,
	txScope checkout.TransactionScope,
	provider checkout.PaymentProvider,
	timeout time.Duration,
	logger *zap.Logger,
) *Confirmer {
	return &Confirmer{
		orderRepo: orderRepo,
		txScope:   txScope,
		provider:  provider,
		timeout:   timeout,
		logger:    logger,
	}
}

var _ shared.EventHandler = (*Confirmer)(nil)

// EventTypes returns the events the confirmer consumes
func (c *Confirmer) EventTypes() []string {
	return []string{order.EventTypeOrderCreated}
}

// Handle charges the order behind the event and records the outcome.
// A provider error is returned so the delivery is retried; a declined
// charge is final and leaves the order PENDING with payment FAILED.
func (c *Confirmer) Handle(ctx context.Context, event shared.DomainEvent) error {
	o, err := c.orderRepo.FindByID(ctx, event.AggregateID())
	if err != nil {
		return err
	}
	if o.PaymentStatus != order.PaymentStatusPending {
		// Redelivery of an already settled order
		return nil
	}

	chargeCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		chargeCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.provider.Charge(chargeCtx, o.ID, o.TotalMoney(), o.PaymentMethod)
	if err != nil {
		c.logger.Error("payment provider error",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
		return err
	}

	if result.Succeeded {
		err = o.MarkPaid()
	} else {
		c.logger.Warn("payment declined",
			zap.String("order_number", o.OrderNumber),
			zap.String("reason", result.FailureReason))
		err = o.MarkPaymentFailed(result.FailureReason)
	}
	if err != nil {
		return err
	}

	err = c.txScope.Execute(ctx, func(repos checkout.TransactionalRepositories) error {
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
		return err
	}
	o.ClearDomainEvents()

	c.logger.Info("payment settled",
		zap.String("order_number", o.OrderNumber),
		zap.String("payment_status", string(o.PaymentStatus)),
		zap.String("transaction_id", result.TransactionID))
	return nil
}
