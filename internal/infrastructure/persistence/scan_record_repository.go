package persistence

import (
	"context"

	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScanRecordRepository implements ScanRecordRepository using GORM.
// The unique index on scan_id turns a concurrent duplicate into
// ALREADY_EXISTS.
type GormScanRecordRepository struct {
	db *gorm.DB
}

// NewGormScanRecordRepository creates a new GormScanRecordRepository
func NewGormScanRecordRepository(db *gorm.DB) *GormScanRecordRepository {
	return &GormScanRecordRepository{db: db}
}

// FindByScanID finds the outcome recorded for scanID
func (r *GormScanRecordRepository) FindByScanID(ctx context.Context, scanID string) (*inventory.ScanRecord, error) {
	var model models.ScanRecordModel
	if err := r.db.WithContext(ctx).Where("scan_id = ?", scanID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create stores a new scan outcome
func (r *GormScanRecordRepository) Create(ctx context.Context, rec *inventory.ScanRecord) error {
	return translateError(r.db.WithContext(ctx).Create(models.ScanRecordModelFromDomain(rec)).Error)
}

// Ensure GormScanRecordRepository implements ScanRecordRepository
var _ inventory.ScanRecordRepository = (*GormScanRecordRepository)(nil)
