package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phoneshop/backend/internal/application/checkout"
	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

// SimulatorConfig controls the behaviour of the simulated provider.
type SimulatorConfig struct {
	// Delay is how long a charge attempt takes before resolving
	Delay time.Duration
	// FailureRate is the probability in [0, 1] that a charge is declined
	FailureRate float64
}

// Validate checks the configuration
func (c *SimulatorConfig) Validate() error {
	if c.Delay < 0 {
		return errors.New("payment simulator: delay cannot be negative")
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return errors.New("payment simulator: failure rate must be between 0 and 1")
	}
	return nil
}

// Simulator is a stand-in payment gateway for development and testing.
// It resolves every charge after the configured delay, declining a
// configurable fraction of attempts so the failure path stays exercised.
type Simulator struct {
	config SimulatorConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulated payment provider
func NewSimulator(config SimulatorConfig, logger *zap.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		config: config,
		logger: logger.Named("payment"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Charge simulates a payment attempt for the given order.
// Cash on delivery settles later, so it always authorizes immediately.
func (s *Simulator) Charge(ctx context.Context, orderID uuid.UUID, amount valueobject.Money, method string) (checkout.PaymentResult, error) {
	if amount.IsZero() || amount.IsNegative() {
		return checkout.PaymentResult{}, fmt.Errorf("charge amount must be positive, got %s", amount.String())
	}

	if err := s.wait(ctx); err != nil {
		return checkout.PaymentResult{}, err
	}

	txID := s.transactionID(method)

	if strings.EqualFold(method, "cash_on_delivery") {
		s.logger.Info("cash on delivery authorized",
			zap.String("order_id", orderID.String()),
			zap.String("transaction_id", txID))
		return checkout.PaymentResult{TransactionID: txID, Succeeded: true}, nil
	}

	if s.roll() < s.config.FailureRate {
		s.logger.Warn("simulated charge declined",
			zap.String("order_id", orderID.String()),
			zap.String("method", method),
			zap.String("amount", amount.String()))
		return checkout.PaymentResult{
			TransactionID: txID,
			Succeeded:     false,
			FailureReason: "declined by issuer",
		}, nil
	}

	s.logger.Info("simulated charge approved",
		zap.String("order_id", orderID.String()),
		zap.String("method", method),
		zap.String("amount", amount.String()),
		zap.String("transaction_id", txID))
	return checkout.PaymentResult{TransactionID: txID, Succeeded: true}, nil
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.config.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.config.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) transactionID(method string) string {
	prefix := "SIM"
	if strings.EqualFold(method, "cash_on_delivery") {
		prefix = "COD"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}

var _ checkout.PaymentProvider = (*Simulator)(nil)
