package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// Product represents a stock-movable item in the catalog.
// It is the aggregate root for barcode and packaging data.
type Product struct {
	shared.BaseAggregateRoot
	Name       string
	PartNumber string
	Barcodes   Barcodes
	Factors    valueobject.ConversionFactors
	BasePrice  decimal.Decimal // price of a single piece
}

// NewProduct creates a new product.
// A product needs at least one barcode to be stock-movable.
func NewProduct(
	name, partNumber string,
	barcodes Barcodes,
	factors valueobject.ConversionFactors,
	basePrice decimal.Decimal,
) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	barcodes = barcodes.Normalize()
	if barcodes.IsEmpty() {
		return nil, shared.NewValidationError("barcodes", "at least one of piece, pack or box barcode is required")
	}
	if err := barcodes.Validate(); err != nil {
		return nil, err
	}
	if err := factors.Validate(); err != nil {
		return nil, err
	}
	if basePrice.IsNegative() {
		return nil, shared.NewValidationError("base_price", "base price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		PartNumber:        strings.TrimSpace(partNumber),
		Barcodes:          barcodes,
		Factors:           factors,
		BasePrice:         basePrice,
	}
	product.AddDomainEvent(NewProductRegisteredEvent(product))

	return product, nil
}

// DetectUnit returns the granularity whose barcode equals code
func (p *Product) DetectUnit(code string) (valueobject.UnitType, bool) {
	return p.Barcodes.Match(code)
}

// IsStockMovable reports whether the product can be scanned at all
func (p *Product) IsStockMovable() bool {
	return !p.Barcodes.IsEmpty()
}

// TotalPiecesPerBox returns pieces_per_pack * packs_per_box
func (p *Product) TotalPiecesPerBox() int64 {
	return p.Factors.PiecesPerBox()
}

// UnitPrice returns the price of one unit of u, derived from the piece price
func (p *Product) UnitPrice(u valueobject.UnitType, factors valueobject.ConversionFactors) decimal.Decimal {
	per, err := factors.PiecesPer(u)
	if err != nil {
		return decimal.Zero
	}
	return p.BasePrice.Mul(decimal.NewFromInt(per))
}

// UpdatePackaging replaces the conversion factors
func (p *Product) UpdatePackaging(factors valueobject.ConversionFactors) error {
	if err := factors.Validate(); err != nil {
		return err
	}
	old := p.Factors
	p.Factors = factors
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPackagingChangedEvent(p, old))
	return nil
}

// UpdateBarcodes replaces the barcode set
func (p *Product) UpdateBarcodes(barcodes Barcodes) error {
	barcodes = barcodes.Normalize()
	if barcodes.IsEmpty() {
		return shared.NewValidationError("barcodes", "at least one of piece, pack or box barcode is required")
	}
	if err := barcodes.Validate(); err != nil {
		return err
	}
	p.Barcodes = barcodes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductBarcodesChangedEvent(p))
	return nil
}

// SetBasePrice updates the piece price
func (p *Product) SetBasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("base_price", "base price cannot be negative")
	}
	p.BasePrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("name", "product name cannot exceed 200 characters")
	}
	return nil
}
