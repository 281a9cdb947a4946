package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflowFixture() (*memStore, *WorkflowService, *StockInService, *StockOutService) {
	store := newMemStore()
	store.seedProduct("Tape", catalog.Barcodes{Piece: "T-1", Pack: "T-10"}, 1)
	stockIns := NewStockInService(memStockIns{store}, memProducts{store}, memLocations{store}, memScope{store})
	stockOuts := NewStockOutService(memStockOuts{store}, memProducts{store}, memLedger{store}, memScope{store}, DefaultOptions())
	return store, NewWorkflowService(stockIns, stockOuts), stockIns, stockOuts
}

func TestWorkflowService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("stock-in completes directly", func(t *testing.T) {
		store, wf, stockIns, _ := newWorkflowFixture()
		loc := store.seedLocation("Main")
		si, err := stockIns.Create(ctx, CreateStockInRequest{})
		require.NoError(t, err)
		_, err = stockIns.AddItem(ctx, si.ID, AddStockInItemRequest{Barcode: "T-10", Quantity: 2, LocationID: &loc.ID})
		require.NoError(t, err)

		res, err := wf.Transition(ctx, inventory.HeaderStockIn, si.ID, inventory.ActionComplete, TransitionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "completed", res.Status)
		assert.Equal(t, si.Reference, res.Reference)
	})

	t.Run("stock-in cannot be approved", func(t *testing.T) {
		_, wf, stockIns, _ := newWorkflowFixture()
		si, err := stockIns.Create(ctx, CreateStockInRequest{})
		require.NoError(t, err)

		_, err = wf.Transition(ctx, inventory.HeaderStockIn, si.ID, inventory.ActionApprove, TransitionRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("approving a missing stock-in is not found", func(t *testing.T) {
		_, wf, _, _ := newWorkflowFixture()
		_, err := wf.Transition(ctx, inventory.HeaderStockIn, uuid.New(), inventory.ActionApprove, TransitionRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("stock-out requires approval before completion", func(t *testing.T) {
		store, wf, _, stockOuts := newWorkflowFixture()
		loc := store.seedLocation("Main")
		for _, p := range store.products {
			store.setBalance(p.ID, loc.ID, 100)
		}
		so, err := stockOuts.Create(ctx, CreateStockOutRequest{Requestor: "lee"})
		require.NoError(t, err)
		_, err = stockOuts.AddItem(ctx, so.ID, AddStockOutItemRequest{Barcode: "T-1", Quantity: 5})
		require.NoError(t, err)

		_, err = wf.Transition(ctx, inventory.HeaderStockOut, so.ID, inventory.ActionComplete, TransitionRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		res, err := wf.Transition(ctx, inventory.HeaderStockOut, so.ID, inventory.ActionApprove, TransitionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "approved", res.Status)

		res, err = wf.Transition(ctx, inventory.HeaderStockOut, so.ID, inventory.ActionComplete, TransitionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "completed", res.Status)
	})

	t.Run("reject records reason", func(t *testing.T) {
		_, wf, _, stockOuts := newWorkflowFixture()
		so, err := stockOuts.Create(ctx, CreateStockOutRequest{Requestor: "lee"})
		require.NoError(t, err)

		res, err := wf.Transition(ctx, inventory.HeaderStockOut, so.ID, inventory.ActionReject, TransitionRequest{Reason: "dup"})
		require.NoError(t, err)
		assert.Equal(t, "rejected", res.Status)

		got, err := stockOuts.GetByID(ctx, so.ID)
		require.NoError(t, err)
		assert.Equal(t, "dup", got.RejectReason)
	})

	t.Run("unknown header kind", func(t *testing.T) {
		_, wf, _, _ := newWorkflowFixture()
		_, err := wf.Transition(ctx, "invoice", uuid.New(), inventory.ActionApprove, TransitionRequest{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
