package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StockInRepository persists stock-in headers together with their lines.
// Save fails with shared.ErrConcurrencyConflict when the stored version
// no longer matches the aggregate's.
type StockInRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockIn, error)
	FindAll(ctx context.Context, filter shared.Filter, status StockInStatus) ([]*StockIn, error)
	Count(ctx context.Context, filter shared.Filter, status StockInStatus) (int64, error)
	Save(ctx context.Context, si *StockIn) error
}

// StockOutRepository persists stock-out headers together with their lines
type StockOutRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockOut, error)
	FindAll(ctx context.Context, filter shared.Filter, status StockOutStatus) ([]*StockOut, error)
	Count(ctx context.Context, filter shared.Filter, status StockOutStatus) (int64, error)
	Save(ctx context.Context, so *StockOut) error
}
