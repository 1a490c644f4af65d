package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

// IdempotencyStore guards against double submission. Acquire returns false
// when the key is already held, the caller must treat that as a concurrent
// duplicate rather than an error.
type IdempotencyStore interface {
	// Acquire attempts to take the key for the given TTL
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees the key before its TTL expires
	Release(ctx context.Context, key string) error
}

// PaymentResult is the outcome of a charge attempt
type PaymentResult struct {
	TransactionID string
	Succeeded     bool
	FailureReason string
}

// PaymentProvider charges a placed order. Implementations may block for the
// duration of the payment flow, callers pass a context with a deadline.
type PaymentProvider interface {
	Charge(ctx context.Context, orderID uuid.UUID, amount valueobject.Money, method string) (PaymentResult, error)
}
