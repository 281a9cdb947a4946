package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StorageLocation is a warehouse -> container -> rack position that holds
// piece balances. Container and rack are optional refinements.
type StorageLocation struct {
	shared.BaseEntity
	Warehouse string
	Container string
	Rack      string
}

// NewStorageLocation creates a storage location
func NewStorageLocation(warehouse, container, rack string) (*StorageLocation, error) {
	warehouse = strings.TrimSpace(warehouse)
	container = strings.TrimSpace(container)
	rack = strings.TrimSpace(rack)
	if warehouse == "" {
		return nil, shared.NewValidationError("warehouse", "warehouse is required")
	}
	if rack != "" && container == "" {
		return nil, shared.NewValidationError("container", "a rack must belong to a container")
	}
	return &StorageLocation{
		BaseEntity: shared.NewBaseEntity(),
		Warehouse:  warehouse,
		Container:  container,
		Rack:       rack,
	}, nil
}

// Label renders the location path, e.g. "Main / C-02 / R-7"
func (l *StorageLocation) Label() string {
	parts := []string{l.Warehouse}
	if l.Container != "" {
		parts = append(parts, l.Container)
	}
	if l.Rack != "" {
		parts = append(parts, l.Rack)
	}
	return strings.Join(parts, " / ")
}

// LocationRepository persists storage locations
type LocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StorageLocation, error)
	FindByPath(ctx context.Context, warehouse, container, rack string) (*StorageLocation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*StorageLocation, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, location *StorageLocation) error
}
