package checkout

import (
	"context"

	"github.com/phoneshop/backend/internal/domain/cart"
	"github.com/phoneshop/backend/internal/domain/inventory"
	"github.com/phoneshop/backend/internal/domain/order"
	"github.com/phoneshop/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to the repositories a
// checkout touches. Everything executed inside Execute commits or rolls
// back as one unit, a failed stock reservation aborts the order insert
// and the cart stays intact.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the checkout repositories
// within a transaction. All returned repositories share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// CartRepo returns the cart repository scoped to the current transaction
	CartRepo() cart.Repository
	// StockLedger returns the stock ledger scoped to the current transaction
	StockLedger() inventory.StockLedger
	// OutboxRepo returns the outbox repository scoped to the current transaction
	OutboxRepo() shared.OutboxRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests where the repositories are in-memory fakes.
type NoOpTransactionScope struct {
	orderRepo  order.Repository
	cartRepo   cart.Repository
	ledger     inventory.StockLedger
	outboxRepo shared.OutboxRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	cartRepo cart.Repository,
	ledger inventory.StockLedger,
	outboxRepo shared.OutboxRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		ledger:     ledger,
		outboxRepo: outboxRepo,
	}
}

// Execute runs the function without transaction isolation
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() order.Repository         { return s.orderRepo }
func (s *NoOpTransactionScope) CartRepo() cart.Repository           { return s.cartRepo }
func (s *NoOpTransactionScope) StockLedger() inventory.StockLedger  { return s.ledger }
func (s *NoOpTransactionScope) OutboxRepo() shared.OutboxRepository { return s.outboxRepo }
