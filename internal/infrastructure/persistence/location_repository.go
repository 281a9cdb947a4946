package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a storage location by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StorageLocation, error) {
	var model models.StorageLocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByPath finds the location at warehouse/container/rack
func (r *GormLocationRepository) FindByPath(ctx context.Context, warehouse, container, rack string) (*inventory.StorageLocation, error) {
	var model models.StorageLocationModel
	if err := r.db.WithContext(ctx).
		Where("warehouse = ? AND container = ? AND rack = ?", warehouse, container, rack).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds storage locations matching the filter
func (r *GormLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*inventory.StorageLocation, error) {
	var rows []models.StorageLocationModel
	query := applyPaging(r.applySearch(r.db.WithContext(ctx).Model(&models.StorageLocationModel{}), filter), filter, locationSortColumns)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*inventory.StorageLocation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count counts storage locations matching the filter
func (r *GormLocationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applySearch(r.db.WithContext(ctx).Model(&models.StorageLocationModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a storage location
func (r *GormLocationRepository) Save(ctx context.Context, location *inventory.StorageLocation) error {
	return translateError(r.db.WithContext(ctx).Save(models.StorageLocationModelFromDomain(location)).Error)
}

func (r *GormLocationRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := likePattern(filter.Search)
	return query.Where("LOWER(warehouse) LIKE ? OR LOWER(container) LIKE ? OR LOWER(rack) LIKE ?", pattern, pattern, pattern)
}

// Ensure GormLocationRepository implements LocationRepository
var _ inventory.LocationRepository = (*GormLocationRepository)(nil)
