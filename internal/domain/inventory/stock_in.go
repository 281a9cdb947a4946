package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StockIn is a goods-receipt header. It is the aggregate root for its
// lines: pending -> completed, or pending -> rejected.
type StockIn struct {
	shared.BaseAggregateRoot
	ItemList
	Reference    string
	SupplierName string
	Notes        string
	Status       StockInStatus
	CompletedAt  *time.Time
	RejectedAt   *time.Time
	RejectReason string
}

// NewStockIn creates an empty pending stock-in
func NewStockIn(supplierName, notes string) *StockIn {
	si := &StockIn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierName:      strings.TrimSpace(supplierName),
		Notes:             strings.TrimSpace(notes),
		Status:            StockInStatusPending,
	}
	si.Reference = newReference("SI", si.ID, si.CreatedAt)
	si.AddDomainEvent(NewStockInCreatedEvent(si))
	return si
}

// EnsureItemsEditable fails with INVALID_STATE unless the header is still
// pending. Callers run it before resolving or validating a line so a closed
// header is reported as such whatever else is wrong with the request.
func (si *StockIn) EnsureItemsEditable() error {
	return si.ensurePending("change items")
}

func (si *StockIn) ensurePending(op string) error {
	if si.Status != StockInStatusPending {
		return invalidState("cannot %s on a %s stock-in", op, si.Status)
	}
	return nil
}

// AddItem appends a received line. Every stock-in line needs the storage
// location the pieces go to.
func (si *StockIn) AddItem(in ItemInput) (*TransactionItem, error) {
	if err := si.ensurePending("add items"); err != nil {
		return nil, err
	}
	if in.LocationID == nil || *in.LocationID == uuid.Nil {
		return nil, shared.NewValidationError("location_id", "a storage location is required for stock-in items")
	}
	in.Flexible = false
	in.OverrideApplied = false
	item, err := si.add(in)
	if err != nil {
		return nil, err
	}
	si.Touch()
	return item, nil
}

// UpdateItem edits a pending line
func (si *StockIn) UpdateItem(itemID uuid.UUID, change ItemChange) (*TransactionItem, error) {
	if err := si.ensurePending("edit items"); err != nil {
		return nil, err
	}
	if change.LocationID != nil && *change.LocationID == uuid.Nil {
		return nil, shared.NewValidationError("location_id", "a storage location is required for stock-in items")
	}
	item, err := si.update(itemID, change)
	if err != nil {
		return nil, err
	}
	si.Touch()
	return item, nil
}

// RemoveItem deletes a pending line
func (si *StockIn) RemoveItem(itemID uuid.UUID) error {
	if err := si.ensurePending("remove items"); err != nil {
		return err
	}
	if err := si.remove(itemID); err != nil {
		return err
	}
	si.Touch()
	return nil
}

// Complete finalizes the receipt. The caller commits the lines to the ledger
// in the same unit of work.
func (si *StockIn) Complete() error {
	if !si.Status.CanTransitionTo(StockInStatusCompleted) {
		return invalidState("cannot complete a %s stock-in", si.Status)
	}
	if si.ItemCount() == 0 {
		return invalidState("cannot complete a stock-in without items")
	}
	now := time.Now()
	si.Status = StockInStatusCompleted
	si.CompletedAt = &now
	si.UpdatedAt = now
	si.AddDomainEvent(NewStockInCompletedEvent(si))
	return nil
}

// Reject discards the receipt without touching stock
func (si *StockIn) Reject(reason string) error {
	if !si.Status.CanTransitionTo(StockInStatusRejected) {
		return invalidState("cannot reject a %s stock-in", si.Status)
	}
	now := time.Now()
	si.Status = StockInStatusRejected
	si.RejectedAt = &now
	si.RejectReason = strings.TrimSpace(reason)
	si.UpdatedAt = now
	si.AddDomainEvent(NewStockInRejectedEvent(si))
	return nil
}

func newReference(prefix string, id uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(id.String()[:8]))
}
