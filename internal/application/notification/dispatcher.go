package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/domain/identity"
	"github.com/phoneshop/backend/internal/domain/notification"
	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// Dispatcher listens for order events and fans them out to the configured
// delivery channels. Delivery is best-effort, a failed channel is logged
// and does not block the others or the originating operation.
type Dispatcher struct {
	userRepo  identity.UserRepository
	notifiers []notification.Notifier
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(userRepo identity.UserRepository, notifiers []notification.Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		userRepo:  userRepo,
		notifiers: notifiers,
		logger:    logger,
	}
}

// EventTypes returns the order events the dispatcher reacts to
func (d *Dispatcher) EventTypes() []string {
	return []string{
		order.EventTypeOrderPaid,
		order.EventTypeOrderPaymentFailed,
		order.EventTypeOrderShipped,
		order.EventTypeOrderCancelled,
	}
}

// Handle builds the notification for the event and sends it on every channel
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		userID  uuid.UUID
		subject string
		body    string
	)

	switch e := event.(type) {
	case *order.OrderPaidEvent:
		userID = e.UserID
		subject = fmt.Sprintf("Siparişiniz alındı: %s", e.OrderNumber)
		body = fmt.Sprintf("%s numaralı siparişiniz için %s TL ödemeniz alındı. Siparişiniz hazırlanıyor.",
			e.OrderNumber, e.Total.StringFixed(2))
	case *order.OrderPaymentFailedEvent:
		userID = e.UserID
		subject = fmt.Sprintf("Ödeme başarısız: %s", e.OrderNumber)
		body = fmt.Sprintf("%s numaralı siparişinizin ödemesi alınamadı: %s. Lütfen tekrar deneyin.",
			e.OrderNumber, e.Reason)
	case *order.OrderShippedEvent:
		userID = e.UserID
		subject = fmt.Sprintf("Siparişiniz kargoda: %s", e.OrderNumber)
		body = fmt.Sprintf("%s numaralı siparişiniz kargoya verildi. Takip numaranız: %s",
			e.OrderNumber, e.TrackingNumber)
	case *order.OrderCancelledEvent:
		userID = e.UserID
		subject = fmt.Sprintf("Siparişiniz iptal edildi: %s", e.OrderNumber)
		if e.Refunded {
			body = fmt.Sprintf("%s numaralı siparişiniz iptal edildi. Ödemeniz iade edilecektir.", e.OrderNumber)
		} else {
			body = fmt.Sprintf("%s numaralı siparişiniz iptal edildi.", e.OrderNumber)
		}
	default:
		// Not an event we notify about
		return nil
	}

	user, err := d.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load recipient for %s: %w", event.EventType(), err)
	}

	for _, notifier := range d.notifiers {
		msg := notification.Message{
			Channel:   notifier.Channel(),
			Recipient: recipientFor(notifier.Channel(), user),
			Subject:   subject,
			Body:      body,
		}
		if msg.Recipient == "" {
			continue
		}
		if err := notifier.Send(ctx, msg); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("channel", string(notifier.Channel())),
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}

	return nil
}

func recipientFor(channel notification.Channel, user *identity.User) string {
	switch channel {
	case notification.ChannelEmail:
		return user.Email
	case notification.ChannelSMS:
		return user.Phone
	case notification.ChannelPush:
		// Device tokens are not tracked, push reuses the user ID as the
		// routing key for the push gateway
		return user.ID.String()
	}
	return ""
}

