package service

import (
	"errors"
	"testing"

	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversionService_ToPieces(t *testing.T) {
	svc := NewUnitConversionService()
	factors := valueobject.ConversionFactors{PiecesPerPack: 10, PacksPerBox: 5}

	result, err := svc.ToPieces(valueobject.UnitBox, 2, factors)
	require.NoError(t, err)

	assert.Equal(t, int64(100), result.TotalPieces)
	assert.Equal(t, int64(50), result.PiecesPerUnit)
	assert.Equal(t, factors, result.Factors)
	assert.False(t, result.OverrideApplied)
}

func TestUnitConversionService_ToPiecesWithOverride(t *testing.T) {
	svc := NewUnitConversionService()
	stored := valueobject.ConversionFactors{PiecesPerPack: 10, PacksPerBox: 5}
	twelve := int64(12)

	result, err := svc.ToPiecesWithOverride(valueobject.UnitPack, 3, stored,
		&valueobject.ConversionOverride{PiecesPerPack: &twelve})
	require.NoError(t, err)

	assert.Equal(t, int64(36), result.TotalPieces)
	assert.True(t, result.OverrideApplied)
	assert.Equal(t, int64(12), result.Factors.PiecesPerPack)
	assert.Equal(t, int64(5), result.Factors.PacksPerBox)
}

func TestUnitConversionService_RejectsInvalid(t *testing.T) {
	svc := NewUnitConversionService()

	_, err := svc.ToPieces(valueobject.UnitPiece, 0, valueobject.ConversionFactors{PiecesPerPack: 1, PacksPerBox: 1})
	assert.True(t, errors.Is(err, shared.ErrInvalidConversion))

	zero := int64(0)
	_, err = svc.ToPiecesWithOverride(valueobject.UnitBox, 1,
		valueobject.ConversionFactors{PiecesPerPack: 1, PacksPerBox: 1},
		&valueobject.ConversionOverride{PacksPerBox: &zero})
	assert.True(t, errors.Is(err, shared.ErrInvalidConversion))
}

func TestUnitConversionService_ToUnits(t *testing.T) {
	svc := NewUnitConversionService()
	factors := valueobject.ConversionFactors{PiecesPerPack: 6, PacksPerBox: 4}

	assert.Equal(t, int64(2), svc.ToUnits(valueobject.UnitBox, 50, factors))
	assert.Equal(t, int64(8), svc.ToUnits(valueobject.UnitPack, 50, factors))
	assert.Equal(t, int64(50), svc.ToUnits(valueobject.UnitPiece, 50, factors))
}
