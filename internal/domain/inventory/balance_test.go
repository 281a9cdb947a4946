package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	productID := uuid.New()
	balances := []StockBalance{
		{ProductID: productID, LocationID: uuid.New(), Pieces: 30},
		{ProductID: productID, LocationID: uuid.New(), Pieces: 0},
		{ProductID: productID, LocationID: uuid.New(), Pieces: 7},
	}

	a := Summarize(productID, balances)
	assert.Equal(t, int64(37), a.TotalPieces)
	assert.Equal(t, 2, a.LocationCount)
}

func TestPlanDeduction(t *testing.T) {
	productID := uuid.New()
	locA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	locB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	locC := uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	balances := []StockBalance{
		{ProductID: productID, LocationID: locA, Pieces: 10},
		{ProductID: productID, LocationID: locB, Pieces: 25},
		{ProductID: productID, LocationID: locC, Pieces: 10},
	}

	t.Run("fullest location first", func(t *testing.T) {
		draws, err := PlanDeduction(productID, balances, 20, nil)
		require.NoError(t, err)
		assert.Equal(t, []Draw{{LocationID: locB, Pieces: 20}}, draws)
	})

	t.Run("spills over with ties broken by id", func(t *testing.T) {
		draws, err := PlanDeduction(productID, balances, 40, nil)
		require.NoError(t, err)
		assert.Equal(t, []Draw{
			{LocationID: locB, Pieces: 25},
			{LocationID: locA, Pieces: 10},
			{LocationID: locC, Pieces: 5},
		}, draws)
	})

	t.Run("restricted to one location", func(t *testing.T) {
		draws, err := PlanDeduction(productID, balances, 10, &locC)
		require.NoError(t, err)
		assert.Equal(t, []Draw{{LocationID: locC, Pieces: 10}}, draws)
	})

	t.Run("restricted location lacks stock", func(t *testing.T) {
		_, err := PlanDeduction(productID, balances, 11, &locA)
		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, int64(10), insufficient.Available)
		assert.Equal(t, int64(11), insufficient.Requested)
	})

	t.Run("total stock too low", func(t *testing.T) {
		_, err := PlanDeduction(productID, balances, 46, nil)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("no balances", func(t *testing.T) {
		_, err := PlanDeduction(productID, nil, 1, nil)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}
