package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// saveHeader creates the header row, or updates it only while the stored
// version still equals version. Returns the version now stored.
func saveHeader(tx *gorm.DB, table string, model any, id uuid.UUID, version int, updates map[string]any) (int, error) {
	var exists int64
	if err := tx.Table(table).Where("id = ?", id).Count(&exists).Error; err != nil {
		return 0, err
	}
	if exists == 0 {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return 0, translateError(err)
		}
		return version, nil
	}

	updates["version"] = version + 1
	result := tx.Table(table).Where("id = ? AND version = ?", id, version).Updates(updates)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrConcurrencyConflict
	}
	return version + 1, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// GormStockInRepository implements StockInRepository using GORM
type GormStockInRepository struct {
	db *gorm.DB
}

// NewGormStockInRepository creates a new GormStockInRepository
func NewGormStockInRepository(db *gorm.DB) *GormStockInRepository {
	return &GormStockInRepository{db: db}
}

// FindByID finds a stock-in with its lines
func (r *GormStockInRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockIn, error) {
	var model models.StockInModel
	if err := r.db.WithContext(ctx).Preload("Items", orderItems).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds stock-ins, optionally restricted to one status
func (r *GormStockInRepository) FindAll(ctx context.Context, filter shared.Filter, status inventory.StockInStatus) ([]*inventory.StockIn, error) {
	var rows []models.StockInModel
	query := applyPaging(r.scope(ctx, filter, status), filter, stockInSortColumns)
	if err := query.Preload("Items", orderItems).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*inventory.StockIn, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count counts stock-ins, optionally restricted to one status
func (r *GormStockInRepository) Count(ctx context.Context, filter shared.Filter, status inventory.StockInStatus) (int64, error) {
	var count int64
	if err := r.scope(ctx, filter, status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the header under its optimistic version and replaces its lines
func (r *GormStockInRepository) Save(ctx context.Context, si *inventory.StockIn) error {
	model := models.StockInModelFromDomain(si)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := saveHeader(tx, model.TableName(), model, si.ID, si.Version, map[string]any{
			"supplier_name": model.SupplierName,
			"notes":         model.Notes,
			"status":        model.Status,
			"completed_at":  model.CompletedAt,
			"rejected_at":   model.RejectedAt,
			"reject_reason": model.RejectReason,
			"updated_at":    model.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if err := tx.Where("stock_in_id = ?", si.ID).Delete(&models.StockInItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return translateError(err)
			}
		}
		si.Version = version
		return nil
	})
}

func (r *GormStockInRepository) scope(ctx context.Context, filter shared.Filter, status inventory.StockInStatus) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.StockInModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(reference) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	return query
}

// GormStockOutRepository implements StockOutRepository using GORM
type GormStockOutRepository struct {
	db *gorm.DB
}

// NewGormStockOutRepository creates a new GormStockOutRepository
func NewGormStockOutRepository(db *gorm.DB) *GormStockOutRepository {
	return &GormStockOutRepository{db: db}
}

// FindByID finds a stock-out with its lines
func (r *GormStockOutRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockOut, error) {
	var model models.StockOutModel
	if err := r.db.WithContext(ctx).Preload("Items", orderItems).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds stock-outs, optionally restricted to one status
func (r *GormStockOutRepository) FindAll(ctx context.Context, filter shared.Filter, status inventory.StockOutStatus) ([]*inventory.StockOut, error) {
	var rows []models.StockOutModel
	query := applyPaging(r.scope(ctx, filter, status), filter, stockOutSortColumns)
	if err := query.Preload("Items", orderItems).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*inventory.StockOut, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count counts stock-outs, optionally restricted to one status
func (r *GormStockOutRepository) Count(ctx context.Context, filter shared.Filter, status inventory.StockOutStatus) (int64, error) {
	var count int64
	if err := r.scope(ctx, filter, status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the header under its optimistic version and replaces its lines
func (r *GormStockOutRepository) Save(ctx context.Context, so *inventory.StockOut) error {
	model := models.StockOutModelFromDomain(so)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := saveHeader(tx, model.TableName(), model, so.ID, so.Version, map[string]any{
			"department":    model.Department,
			"requestor":     model.Requestor,
			"notes":         model.Notes,
			"status":        model.Status,
			"approved_at":   model.ApprovedAt,
			"completed_at":  model.CompletedAt,
			"rejected_at":   model.RejectedAt,
			"reject_reason": model.RejectReason,
			"updated_at":    model.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if err := tx.Where("stock_out_id = ?", so.ID).Delete(&models.StockOutItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return translateError(err)
			}
		}
		so.Version = version
		return nil
	})
}

func (r *GormStockOutRepository) scope(ctx context.Context, filter shared.Filter, status inventory.StockOutStatus) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.StockOutModel{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(reference) LIKE ? OR LOWER(requestor) LIKE ? OR LOWER(department) LIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

var (
	_ inventory.StockInRepository  = (*GormStockInRepository)(nil)
	_ inventory.StockOutRepository = (*GormStockOutRepository)(nil)
)
