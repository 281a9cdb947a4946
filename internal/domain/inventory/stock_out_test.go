package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingStockOut(t *testing.T) *StockOut {
	t.Helper()
	so, err := NewStockOut("Maintenance", "dana", "")
	require.NoError(t, err)
	return so
}

func TestNewStockOut(t *testing.T) {
	t.Run("requires requestor", func(t *testing.T) {
		_, err := NewStockOut("Ops", "  ", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("starts pending", func(t *testing.T) {
		so := newPendingStockOut(t)
		assert.Equal(t, StockOutStatusPending, so.Status)
		assert.Contains(t, so.Reference, "SO-")
		require.Len(t, so.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockOutCreated, so.GetDomainEvents()[0].EventType())
	})
}

func TestStockOut_Lifecycle(t *testing.T) {
	t.Run("pending to approved to completed", func(t *testing.T) {
		so := newPendingStockOut(t)
		_, err := so.AddItem(boxInput(nil, 1))
		require.NoError(t, err)

		require.NoError(t, so.Approve())
		assert.Equal(t, StockOutStatusApproved, so.Status)
		assert.NotNil(t, so.ApprovedAt)

		require.NoError(t, so.Complete())
		assert.Equal(t, StockOutStatusCompleted, so.Status)
		assert.NotNil(t, so.CompletedAt)

		types := make([]string, 0)
		for _, e := range so.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{EventTypeStockOutCreated, EventTypeStockOutApproved, EventTypeStockOutCompleted}, types)
	})

	t.Run("complete from pending is invalid", func(t *testing.T) {
		so := newPendingStockOut(t)
		_, err := so.AddItem(boxInput(nil, 1))
		require.NoError(t, err)

		assert.ErrorIs(t, so.Complete(), shared.ErrInvalidState)
		assert.Equal(t, StockOutStatusPending, so.Status)
	})

	t.Run("approve requires items", func(t *testing.T) {
		so := newPendingStockOut(t)
		assert.ErrorIs(t, so.Approve(), shared.ErrInvalidState)
	})

	t.Run("approved header is frozen", func(t *testing.T) {
		so := newPendingStockOut(t)
		item, err := so.AddItem(boxInput(nil, 1))
		require.NoError(t, err)
		require.NoError(t, so.Approve())

		_, err = so.AddItem(boxInput(nil, 1))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		price := decimal.NewFromInt(1)
		_, err = so.UpdateItem(item.ID, ItemChange{PricePerUnit: &price})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.ErrorIs(t, so.RemoveItem(item.ID), shared.ErrInvalidState)
		assert.ErrorIs(t, so.Approve(), shared.ErrInvalidState)
	})

	t.Run("reject from approved records prior status", func(t *testing.T) {
		so := newPendingStockOut(t)
		_, err := so.AddItem(boxInput(nil, 1))
		require.NoError(t, err)
		require.NoError(t, so.Approve())
		so.ClearDomainEvents()

		require.NoError(t, so.Reject("cancelled"))
		assert.Equal(t, StockOutStatusRejected, so.Status)

		events := so.GetDomainEvents()
		require.Len(t, events, 1)
		rejected, ok := events[0].(*StockOutRejectedEvent)
		require.True(t, ok)
		assert.Equal(t, StockOutStatusApproved, rejected.FromStatus)
		assert.Equal(t, "cancelled", rejected.Reason)
	})

	t.Run("terminal states reject further actions", func(t *testing.T) {
		so := newPendingStockOut(t)
		require.NoError(t, so.Reject(""))

		assert.ErrorIs(t, so.Approve(), shared.ErrInvalidState)
		assert.ErrorIs(t, so.Complete(), shared.ErrInvalidState)
		assert.ErrorIs(t, so.Reject("again"), shared.ErrInvalidState)
	})
}

func TestStockOut_EnsureItemsEditable(t *testing.T) {
	so := newPendingStockOut(t)
	require.NoError(t, so.EnsureItemsEditable())
	_, err := so.AddItem(boxInput(nil, 1))
	require.NoError(t, err)
	require.NoError(t, so.Approve())

	assert.ErrorIs(t, so.EnsureItemsEditable(), shared.ErrInvalidState)
}

func TestStockOut_PiecesByProduct(t *testing.T) {
	so := newPendingStockOut(t)
	productID := uuid.New()
	factors := valueobject.ConversionFactors{PiecesPerPack: 6, PacksPerBox: 4}

	_, err := so.AddItem(ItemInput{
		ProductID: productID, UnitType: valueobject.UnitPack, Quantity: 2, TotalPieces: 12, Factors: factors,
	})
	require.NoError(t, err)
	_, err = so.AddItem(ItemInput{
		ProductID: productID, UnitType: valueobject.UnitPack, Quantity: 5, TotalPieces: 5, Factors: factors, Flexible: true,
	})
	require.NoError(t, err)
	other := boxInput(nil, 1)
	_, err = so.AddItem(other)
	require.NoError(t, err)

	order, sums := so.PiecesByProduct()
	assert.Equal(t, []uuid.UUID{productID, other.ProductID}, order)
	assert.Equal(t, int64(17), sums[productID])
	assert.Equal(t, int64(50), sums[other.ProductID])
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Approve ")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseAction("ship")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
