package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// InsufficientStockError reports a withdrawal larger than the pieces on hand.
// It unwraps to shared.ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int64
	Requested int64
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, available, requested int64) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Available: available, Requested: requested}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// Unwrap lets errors.Is match shared.ErrInsufficientStock
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// Details exposes the structured context for transport layers
func (e *InsufficientStockError) Details() map[string]any {
	return map[string]any{
		"product_id": e.ProductID.String(),
		"available":  e.Available,
		"requested":  e.Requested,
	}
}

func invalidState(format string, args ...any) error {
	return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf(format, args...))
}
