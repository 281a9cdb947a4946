package models

import (
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// ProductModel is the persistence model for the Product aggregate root.
// Barcode columns are indexed individually because a scan may match any
// of the three slots.
type ProductModel struct {
	VersionedColumns
	Name          string          `gorm:"type:varchar(200);not null;index"`
	PartNumber    string          `gorm:"type:varchar(100);index"`
	PieceBarcode  *string         `gorm:"type:varchar(64);index"`
	PackBarcode   *string         `gorm:"type:varchar(64);index"`
	BoxBarcode    *string         `gorm:"type:varchar(64);index"`
	PiecesPerPack int64           `gorm:"not null;default:1"`
	PacksPerBox   int64           `gorm:"not null;default:1"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		PartNumber:        m.PartNumber,
		Barcodes: catalog.Barcodes{
			Piece: deref(m.PieceBarcode),
			Pack:  deref(m.PackBarcode),
			Box:   deref(m.BoxBarcode),
		},
		Factors: valueobject.ConversionFactors{
			PiecesPerPack: m.PiecesPerPack,
			PacksPerBox:   m.PacksPerBox,
		},
		BasePrice: m.BasePrice,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.VersionedColumns = versionedColumns(p.BaseAggregateRoot)
	m.Name = p.Name
	m.PartNumber = p.PartNumber
	m.PieceBarcode = nullable(p.Barcodes.Piece)
	m.PackBarcode = nullable(p.Barcodes.Pack)
	m.BoxBarcode = nullable(p.Barcodes.Box)
	m.PiecesPerPack = p.Factors.PiecesPerPack
	m.PacksPerBox = p.Factors.PacksPerBox
	m.BasePrice = p.BasePrice
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// empty barcode slots are stored as NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
