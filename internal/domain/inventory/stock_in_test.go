package inventory

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxInput(location *uuid.UUID, quantity int64) ItemInput {
	factors := valueobject.ConversionFactors{PiecesPerPack: 10, PacksPerBox: 5}
	pieces, _ := factors.ToPieces(valueobject.UnitBox, quantity)
	return ItemInput{
		ProductID:    uuid.New(),
		ProductName:  "Copy Paper",
		Barcode:      "BOX-1",
		UnitType:     valueobject.UnitBox,
		Quantity:     quantity,
		TotalPieces:  pieces,
		Factors:      factors,
		PricePerUnit: decimal.NewFromInt(25),
		LocationID:   location,
	}
}

func TestNewStockIn(t *testing.T) {
	si := NewStockIn(" Acme ", "")

	assert.Equal(t, StockInStatusPending, si.Status)
	assert.Equal(t, "Acme", si.SupplierName)
	assert.True(t, strings.HasPrefix(si.Reference, "SI-"))
	assert.Equal(t, 1, si.GetVersion())
	require.Len(t, si.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeStockInCreated, si.GetDomainEvents()[0].EventType())
}

func TestStockIn_Items(t *testing.T) {
	loc := uuid.New()

	t.Run("add computes amount from quantity", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		item, err := si.AddItem(boxInput(&loc, 2))
		require.NoError(t, err)

		assert.Equal(t, int64(100), item.TotalPieces)
		assert.True(t, decimal.NewFromInt(50).Equal(item.TotalAmount))
		assert.Equal(t, 1, si.ItemCount())
		assert.Equal(t, int64(100), si.TotalPieces())
	})

	t.Run("location is required", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		_, err := si.AddItem(boxInput(nil, 1))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("flexible flag is cleared", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		in := boxInput(&loc, 1)
		in.Flexible = true
		item, err := si.AddItem(in)
		require.NoError(t, err)
		assert.False(t, item.Flexible)
	})

	t.Run("update recomputes pieces and amount", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		item, err := si.AddItem(boxInput(&loc, 1))
		require.NoError(t, err)

		qty := int64(3)
		price := decimal.NewFromInt(20)
		updated, err := si.UpdateItem(item.ID, ItemChange{Quantity: &qty, PricePerUnit: &price})
		require.NoError(t, err)
		assert.Equal(t, int64(150), updated.TotalPieces)
		assert.True(t, decimal.NewFromInt(60).Equal(updated.TotalAmount))
	})

	t.Run("update with invalid quantity leaves line intact", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		item, err := si.AddItem(boxInput(&loc, 1))
		require.NoError(t, err)

		qty := int64(0)
		_, err = si.UpdateItem(item.ID, ItemChange{Quantity: &qty})
		assert.ErrorIs(t, err, shared.ErrInvalidConversion)

		got, ok := si.Item(item.ID)
		require.True(t, ok)
		assert.Equal(t, int64(1), got.Quantity)
	})

	t.Run("update unknown item", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		qty := int64(1)
		_, err := si.UpdateItem(uuid.New(), ItemChange{Quantity: &qty})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		item, err := si.AddItem(boxInput(&loc, 1))
		require.NoError(t, err)

		require.NoError(t, si.RemoveItem(item.ID))
		assert.Equal(t, 0, si.ItemCount())
		assert.ErrorIs(t, si.RemoveItem(item.ID), shared.ErrNotFound)
	})
}

func TestStockIn_Transitions(t *testing.T) {
	loc := uuid.New()

	t.Run("complete requires items", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		assert.ErrorIs(t, si.Complete(), shared.ErrInvalidState)
		assert.Equal(t, StockInStatusPending, si.Status)
	})

	t.Run("complete", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		_, err := si.AddItem(boxInput(&loc, 1))
		require.NoError(t, err)
		si.ClearDomainEvents()

		require.NoError(t, si.Complete())
		assert.Equal(t, StockInStatusCompleted, si.Status)
		assert.NotNil(t, si.CompletedAt)

		events := si.GetDomainEvents()
		require.Len(t, events, 1)
		completed, ok := events[0].(*StockInCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(50), completed.TotalPieces)
	})

	t.Run("terminal header rejects every change", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		item, err := si.AddItem(boxInput(&loc, 1))
		require.NoError(t, err)
		require.NoError(t, si.Complete())

		_, err = si.AddItem(boxInput(&loc, 1))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		qty := int64(2)
		_, err = si.UpdateItem(item.ID, ItemChange{Quantity: &qty})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.ErrorIs(t, si.RemoveItem(item.ID), shared.ErrInvalidState)
		assert.ErrorIs(t, si.Complete(), shared.ErrInvalidState)
		assert.ErrorIs(t, si.Reject("late"), shared.ErrInvalidState)
	})

	t.Run("reject keeps reason", func(t *testing.T) {
		si := NewStockIn("Acme", "")
		require.NoError(t, si.Reject(" damaged "))
		assert.Equal(t, StockInStatusRejected, si.Status)
		assert.Equal(t, "damaged", si.RejectReason)
		assert.True(t, si.Status.IsTerminal())
	})
}

func TestStockInStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StockInStatusPending.CanTransitionTo(StockInStatusCompleted))
	assert.True(t, StockInStatusPending.CanTransitionTo(StockInStatusRejected))
	assert.False(t, StockInStatusPending.CanTransitionTo(StockInStatusPending))
	assert.False(t, StockInStatusCompleted.CanTransitionTo(StockInStatusRejected))
	assert.False(t, StockInStatusRejected.CanTransitionTo(StockInStatusCompleted))
}
