package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByBarcode returns every product carrying code in any slot
func (r *GormProductRepository) FindByBarcode(ctx context.Context, code string) ([]*catalog.Product, error) {
	code = catalog.NormalizeBarcode(code)
	if code == "" {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("piece_barcode = ? OR pack_barcode = ? OR box_barcode = ?", code, code, code).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindByAnyBarcode returns every product carrying any of codes
func (r *GormProductRepository) FindByAnyBarcode(ctx context.Context, codes []string) ([]*catalog.Product, error) {
	normalized := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = catalog.NormalizeBarcode(c); c != "" {
			normalized = append(normalized, c)
		}
	}
	if len(normalized) == 0 {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("piece_barcode IN ? OR pack_barcode IN ? OR box_barcode IN ?", normalized, normalized, normalized).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Product, error) {
	var rows []models.ProductModel
	query := applyPaging(r.applySearch(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter), filter, productSortColumns)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applySearch(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates a new product or updates an existing one. Product
// mutations bump the version themselves, so the stored row must still
// carry the previous version.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.ProductModel{}).Where("id = ?", product.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return translateError(tx.Create(model).Error)
		}

		result := tx.Model(&models.ProductModel{}).
			Where("id = ? AND version = ?", product.ID, product.Version-1).
			Updates(map[string]any{
				"name":            model.Name,
				"part_number":     model.PartNumber,
				"piece_barcode":   model.PieceBarcode,
				"pack_barcode":    model.PackBarcode,
				"box_barcode":     model.BoxBarcode,
				"pieces_per_pack": model.PiecesPerPack,
				"packs_per_box":   model.PacksPerBox,
				"base_price":      model.BasePrice,
				"version":         model.Version,
				"updated_at":      model.UpdatedAt,
			})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

func (r *GormProductRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := likePattern(filter.Search)
	return query.Where(
		"LOWER(name) LIKE ? OR LOWER(part_number) LIKE ? OR piece_barcode = ? OR pack_barcode = ? OR box_barcode = ?",
		pattern, pattern, filter.Search, filter.Search, filter.Search,
	)
}

func toProducts(rows []models.ProductModel) []*catalog.Product {
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
