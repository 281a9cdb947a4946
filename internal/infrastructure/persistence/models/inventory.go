package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// StorageLocationModel is the persistence model for StorageLocation.
// Empty container and rack are stored as '' so the path index stays unique.
type StorageLocationModel struct {
	EntityColumns
	Warehouse string `gorm:"type:varchar(100);not null;uniqueIndex:idx_storage_location_path,priority:1"`
	Container string `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_storage_location_path,priority:2"`
	Rack      string `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_storage_location_path,priority:3"`
}

// TableName returns the table name for GORM
func (StorageLocationModel) TableName() string {
	return "storage_locations"
}

// ToDomain converts the persistence model to a domain StorageLocation entity.
func (m *StorageLocationModel) ToDomain() *inventory.StorageLocation {
	return &inventory.StorageLocation{
		BaseEntity: m.entity(),
		Warehouse:  m.Warehouse,
		Container:  m.Container,
		Rack:       m.Rack,
	}
}

// StorageLocationModelFromDomain creates a new persistence model from a domain StorageLocation.
func StorageLocationModelFromDomain(l *inventory.StorageLocation) *StorageLocationModel {
	m := &StorageLocationModel{
		Warehouse: l.Warehouse,
		Container: l.Container,
		Rack:      l.Rack,
	}
	m.EntityColumns = entityColumns(l.BaseEntity)
	return m
}

// StockBalanceModel holds the piece count of one product at one location.
// Rows are locked FOR UPDATE while a deduction is planned.
type StockBalanceModel struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Pieces     int64     `gorm:"not null;default:0;check:chk_stock_balance_non_negative,pieces >= 0"`
	Version    int       `gorm:"not null;default:1"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockBalanceModel) TableName() string {
	return "stock_balances"
}

// ToDomain converts the persistence model to a domain StockBalance.
func (m *StockBalanceModel) ToDomain() inventory.StockBalance {
	return inventory.StockBalance{
		ProductID:  m.ProductID,
		LocationID: m.LocationID,
		Pieces:     m.Pieces,
		Version:    m.Version,
		UpdatedAt:  m.UpdatedAt,
	}
}

// StockMovementModel is one append-only ledger entry
type StockMovementModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Direction     string    `gorm:"type:varchar(8);not null"`
	Pieces        int64     `gorm:"not null"`
	BalanceAfter  int64     `gorm:"not null"`
	ReferenceType string    `gorm:"type:varchar(20);not null;index:idx_stock_movement_ref,priority:1"`
	ReferenceID   string    `gorm:"type:varchar(128);not null;index:idx_stock_movement_ref,priority:2"`
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain Movement.
func (m *StockMovementModel) ToDomain() inventory.Movement {
	return inventory.Movement{
		ID:            m.ID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Direction:     inventory.Direction(m.Direction),
		Pieces:        m.Pieces,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: inventory.ReferenceType(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain Movement.
func StockMovementModelFromDomain(mv inventory.Movement) *StockMovementModel {
	return &StockMovementModel{
		ID:            mv.ID,
		ProductID:     mv.ProductID,
		LocationID:    mv.LocationID,
		Direction:     string(mv.Direction),
		Pieces:        mv.Pieces,
		BalanceAfter:  mv.BalanceAfter,
		ReferenceType: string(mv.ReferenceType),
		ReferenceID:   mv.ReferenceID,
		CreatedAt:     mv.CreatedAt,
	}
}

// ScanRecordModel persists one scan-and-deduct outcome. The unique scan_id
// is the durable half of scan idempotency.
type ScanRecordModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	ScanID         string          `gorm:"type:varchar(128);not null;uniqueIndex"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	Barcode        string          `gorm:"type:varchar(64);not null"`
	UnitType       string          `gorm:"type:varchar(8);not null"`
	Quantity       int64           `gorm:"not null"`
	Flexible       bool            `gorm:"not null;default:false"`
	PiecesDeducted int64           `gorm:"not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingStock int64           `gorm:"not null"`
	LocationID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ScanRecordModel) TableName() string {
	return "scan_records"
}

// ToDomain converts the persistence model to a domain ScanRecord.
func (m *ScanRecordModel) ToDomain() *inventory.ScanRecord {
	return &inventory.ScanRecord{
		ScanID:         m.ScanID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Barcode:        m.Barcode,
		UnitType:       valueobject.UnitType(m.UnitType),
		Quantity:       m.Quantity,
		Flexible:       m.Flexible,
		PiecesDeducted: m.PiecesDeducted,
		Amount:         m.Amount,
		RemainingStock: m.RemainingStock,
		LocationID:     m.LocationID,
		CreatedAt:      m.CreatedAt,
	}
}

// ScanRecordModelFromDomain creates a new persistence model from a domain ScanRecord.
func ScanRecordModelFromDomain(r *inventory.ScanRecord) *ScanRecordModel {
	return &ScanRecordModel{
		ID:             uuid.New(),
		ScanID:         r.ScanID,
		ProductID:      r.ProductID,
		ProductName:    r.ProductName,
		Barcode:        r.Barcode,
		UnitType:       r.UnitType.String(),
		Quantity:       r.Quantity,
		Flexible:       r.Flexible,
		PiecesDeducted: r.PiecesDeducted,
		Amount:         r.Amount,
		RemainingStock: r.RemainingStock,
		LocationID:     r.LocationID,
		CreatedAt:      r.CreatedAt,
	}
}

// TransactionItemModel holds the columns shared by stock-in and stock-out lines
type TransactionItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Barcode         string          `gorm:"type:varchar(64);not null"`
	UnitType        string          `gorm:"type:varchar(8);not null"`
	Quantity        int64           `gorm:"not null"`
	TotalPieces     int64           `gorm:"not null"`
	PiecesPerPack   int64           `gorm:"not null"`
	PacksPerBox     int64           `gorm:"not null"`
	OverrideApplied bool            `gorm:"not null;default:false"`
	Flexible        bool            `gorm:"not null;default:false"`
	PricePerUnit    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LocationID      *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// ToDomain converts the persistence model to a domain TransactionItem.
func (m *TransactionItemModel) ToDomain() inventory.TransactionItem {
	return inventory.TransactionItem{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Barcode:     m.Barcode,
		UnitType:    valueobject.UnitType(m.UnitType),
		Quantity:    m.Quantity,
		TotalPieces: m.TotalPieces,
		Factors: valueobject.ConversionFactors{
			PiecesPerPack: m.PiecesPerPack,
			PacksPerBox:   m.PacksPerBox,
		},
		OverrideApplied: m.OverrideApplied,
		Flexible:        m.Flexible,
		PricePerUnit:    m.PricePerUnit,
		TotalAmount:     m.TotalAmount,
		LocationID:      m.LocationID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain TransactionItem.
func (m *TransactionItemModel) FromDomain(i inventory.TransactionItem) {
	m.ID = i.ID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Barcode = i.Barcode
	m.UnitType = i.UnitType.String()
	m.Quantity = i.Quantity
	m.TotalPieces = i.TotalPieces
	m.PiecesPerPack = i.Factors.PiecesPerPack
	m.PacksPerBox = i.Factors.PacksPerBox
	m.OverrideApplied = i.OverrideApplied
	m.Flexible = i.Flexible
	m.PricePerUnit = i.PricePerUnit
	m.TotalAmount = i.TotalAmount
	m.LocationID = i.LocationID
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

