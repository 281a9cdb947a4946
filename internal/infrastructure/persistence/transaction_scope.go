package persistence

import (
	"context"

	appinv "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// StockInRepo returns the stock-in repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockInRepo() inventory.StockInRepository {
	return NewGormStockInRepository(r.tx)
}

// StockOutRepo returns the stock-out repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockOutRepo() inventory.StockOutRepository {
	return NewGormStockOutRepository(r.tx)
}

// Ledger returns the stock ledger scoped to the current transaction.
func (r *gormTransactionalRepositories) Ledger() inventory.StockLedger {
	return NewGormStockLedger(r.tx)
}

// ScanRecordRepo returns the scan record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ScanRecordRepo() inventory.ScanRecordRepository {
	return NewGormScanRecordRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
