package service

import (
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// ConversionResult describes one unit-to-piece conversion
type ConversionResult struct {
	Unit            valueobject.UnitType
	Quantity        int64
	Factors         valueobject.ConversionFactors // factors actually used
	PiecesPerUnit   int64
	TotalPieces     int64
	OverrideApplied bool
}

// UnitConversionService converts scanned quantities into pieces.
// It is stateless; the zero value is ready to use.
type UnitConversionService struct{}

// NewUnitConversionService creates a new unit conversion service
func NewUnitConversionService() *UnitConversionService {
	return &UnitConversionService{}
}

// ToPieces converts quantity units of unit with the given factors
func (s *UnitConversionService) ToPieces(
	unit valueobject.UnitType,
	quantity int64,
	factors valueobject.ConversionFactors,
) (*ConversionResult, error) {
	return s.ToPiecesWithOverride(unit, quantity, factors, nil)
}

// ToPiecesWithOverride converts like ToPieces after substituting any
// override factors. Stock-in callers always pass a nil override.
func (s *UnitConversionService) ToPiecesWithOverride(
	unit valueobject.UnitType,
	quantity int64,
	stored valueobject.ConversionFactors,
	override *valueobject.ConversionOverride,
) (*ConversionResult, error) {
	factors, err := override.Apply(stored)
	if err != nil {
		return nil, err
	}
	total, err := factors.ToPieces(unit, quantity)
	if err != nil {
		return nil, err
	}
	per, _ := factors.PiecesPer(unit)

	return &ConversionResult{
		Unit:            unit,
		Quantity:        quantity,
		Factors:         factors,
		PiecesPerUnit:   per,
		TotalPieces:     total,
		OverrideApplied: !override.IsEmpty(),
	}, nil
}

// ToUnits expresses pieces in whole units, rounding down
func (s *UnitConversionService) ToUnits(
	unit valueobject.UnitType,
	pieces int64,
	factors valueobject.ConversionFactors,
) int64 {
	return factors.FromPieces(unit, pieces)
}
