package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// It is the catalog the barcode resolver looks products up in.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByBarcode returns every product carrying code in any of its
	// piece, pack or box slots. An empty slice means no match.
	FindByBarcode(ctx context.Context, code string) ([]*Product, error)

	// FindByAnyBarcode returns every product carrying any of codes
	FindByAnyBarcode(ctx context.Context, codes []string) ([]*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindAll finds products matching the filter (Search matches name,
	// part number or any barcode)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
