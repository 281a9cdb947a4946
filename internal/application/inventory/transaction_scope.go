package inventory

import (
	"context"

	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - StockInRepo / StockOutRepo: header aggregates, saved with their lines.
//   - Ledger: per-location balances and the append-only movement log. Deductions
//     lock the product's balance rows for the rest of the transaction.
//   - ScanRecordRepo: one row per committed scan, unique by scan id.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// StockInRepo returns the stock-in repository scoped to the current transaction
	StockInRepo() inventory.StockInRepository
	// StockOutRepo returns the stock-out repository scoped to the current transaction
	StockOutRepo() inventory.StockOutRepository
	// Ledger returns the stock ledger scoped to the current transaction
	Ledger() inventory.StockLedger
	// ScanRecordRepo returns the scan record repository scoped to the current transaction
	ScanRecordRepo() inventory.ScanRecordRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	productRepo  catalog.ProductRepository
	stockInRepo  inventory.StockInRepository
	stockOutRepo inventory.StockOutRepository
	ledger       inventory.StockLedger
	scanRepo     inventory.ScanRecordRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	stockInRepo inventory.StockInRepository,
	stockOutRepo inventory.StockOutRepository,
	ledger inventory.StockLedger,
	scanRepo inventory.ScanRecordRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:  productRepo,
		stockInRepo:  stockInRepo,
		stockOutRepo: stockOutRepo,
		ledger:       ledger,
		scanRepo:     scanRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

// StockInRepo returns the stock-in repository.
func (s *NoOpTransactionScope) StockInRepo() inventory.StockInRepository { return s.stockInRepo }

// StockOutRepo returns the stock-out repository.
func (s *NoOpTransactionScope) StockOutRepo() inventory.StockOutRepository { return s.stockOutRepo }

// Ledger returns the stock ledger.
func (s *NoOpTransactionScope) Ledger() inventory.StockLedger { return s.ledger }

// ScanRecordRepo returns the scan record repository.
func (s *NoOpTransactionScope) ScanRecordRepo() inventory.ScanRecordRepository { return s.scanRepo }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
