package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLedger implements StockLedger on the stock_balances and
// stock_movements tables. Deductions lock the product's balance rows
// FOR UPDATE, plan against the locked values and apply every draw in the
// same transaction.
type GormStockLedger struct {
	db *gorm.DB
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// GetAvailablePieces sums the product's positive balances
func (l *GormStockLedger) GetAvailablePieces(ctx context.Context, productID uuid.UUID) (inventory.Availability, error) {
	var row struct {
		TotalPieces   int64
		LocationCount int
	}
	if err := l.db.WithContext(ctx).
		Model(&models.StockBalanceModel{}).
		Select("COALESCE(SUM(pieces), 0) AS total_pieces, COUNT(*) AS location_count").
		Where("product_id = ? AND pieces > 0", productID).
		Scan(&row).Error; err != nil {
		return inventory.Availability{}, err
	}
	return inventory.Availability{
		ProductID:     productID,
		TotalPieces:   row.TotalPieces,
		LocationCount: row.LocationCount,
	}, nil
}

// GetBalances lists the product's balances per location
func (l *GormStockLedger) GetBalances(ctx context.Context, productID uuid.UUID) ([]inventory.StockBalance, error) {
	var rows []models.StockBalanceModel
	if err := l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("location_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBalances(rows), nil
}

// CommitDeduction locks the product's balances, re-checks sufficiency and
// subtracts the pieces. On any failure nothing is written.
func (l *GormStockLedger) CommitDeduction(ctx context.Context, req inventory.DeductionRequest) (*inventory.DeductionResult, error) {
	if req.Pieces <= 0 {
		return nil, shared.ErrInvalidConversion.WithDetail("pieces", req.Pieces)
	}

	var result *inventory.DeductionResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.StockBalanceModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", req.ProductID).
			Order("location_id ASC").
			Find(&rows).Error; err != nil {
			return err
		}

		draws, err := inventory.PlanDeduction(req.ProductID, toBalances(rows), req.Pieces, req.LocationID)
		if err != nil {
			return err
		}

		byLocation := make(map[uuid.UUID]int64, len(rows))
		for _, row := range rows {
			byLocation[row.LocationID] = row.Pieces
		}

		now := time.Now()
		res := &inventory.DeductionResult{PiecesDeducted: req.Pieces}
		for _, d := range draws {
			update := tx.Model(&models.StockBalanceModel{}).
				Where("product_id = ? AND location_id = ? AND pieces >= ?", req.ProductID, d.LocationID, d.Pieces).
				Updates(map[string]any{
					"pieces":     gorm.Expr("pieces - ?", d.Pieces),
					"version":    gorm.Expr("version + 1"),
					"updated_at": now,
				})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}

			after := byLocation[d.LocationID] - d.Pieces
			mv := inventory.NewMovement(req.ProductID, d.LocationID, inventory.DirectionOut, d.Pieces, after, req.Reference)
			if err := tx.Create(models.StockMovementModelFromDomain(mv)).Error; err != nil {
				return err
			}
			res.Movements = append(res.Movements, mv)
		}

		var remaining int64
		if err := tx.Model(&models.StockBalanceModel{}).
			Select("COALESCE(SUM(pieces), 0)").
			Where("product_id = ? AND pieces > 0", req.ProductID).
			Scan(&remaining).Error; err != nil {
			return err
		}
		res.RemainingPieces = remaining
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CommitAddition adds pieces to one location, creating the balance row
// on first receipt.
func (l *GormStockLedger) CommitAddition(ctx context.Context, req inventory.AdditionRequest) (*inventory.Movement, error) {
	if req.Pieces <= 0 {
		return nil, shared.ErrInvalidConversion.WithDetail("pieces", req.Pieces)
	}
	if req.LocationID == uuid.Nil {
		return nil, shared.NewValidationError("location_id", "a location is required to receive stock")
	}

	var movement *inventory.Movement
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		row := models.StockBalanceModel{
			ProductID:  req.ProductID,
			LocationID: req.LocationID,
			Pieces:     req.Pieces,
			Version:    1,
			UpdatedAt:  now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"pieces":     gorm.Expr("stock_balances.pieces + ?", req.Pieces),
				"version":    gorm.Expr("stock_balances.version + 1"),
				"updated_at": now,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		var after models.StockBalanceModel
		if err := tx.Where("product_id = ? AND location_id = ?", req.ProductID, req.LocationID).
			First(&after).Error; err != nil {
			return err
		}

		mv := inventory.NewMovement(req.ProductID, req.LocationID, inventory.DirectionIn, req.Pieces, after.Pieces, req.Reference)
		if err := tx.Create(models.StockMovementModelFromDomain(mv)).Error; err != nil {
			return err
		}
		movement = &mv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// FindMovementsByReference lists movements produced by one document
func (l *GormStockLedger) FindMovementsByReference(ctx context.Context, ref inventory.Reference) ([]inventory.Movement, error) {
	var rows []models.StockMovementModel
	if err := l.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", string(ref.Type), ref.ID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Movement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func toBalances(rows []models.StockBalanceModel) []inventory.StockBalance {
	out := make([]inventory.StockBalance, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormStockLedger implements StockLedger
var _ inventory.StockLedger = (*GormStockLedger)(nil)
