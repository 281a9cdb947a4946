package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StockOut is a goods-issue header: pending -> approved -> completed, with
// rejection allowed from pending or approved.
type StockOut struct {
	shared.BaseAggregateRoot
	ItemList
	Reference    string
	Department   string
	Requestor    string
	Notes        string
	Status       StockOutStatus
	ApprovedAt   *time.Time
	CompletedAt  *time.Time
	RejectedAt   *time.Time
	RejectReason string
}

// NewStockOut creates an empty pending stock-out
func NewStockOut(department, requestor, notes string) (*StockOut, error) {
	requestor = strings.TrimSpace(requestor)
	if requestor == "" {
		return nil, shared.NewValidationError("requestor", "requestor is required")
	}
	so := &StockOut{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Department:        strings.TrimSpace(department),
		Requestor:         requestor,
		Notes:             strings.TrimSpace(notes),
		Status:            StockOutStatusPending,
	}
	so.Reference = newReference("SO", so.ID, so.CreatedAt)
	so.AddDomainEvent(NewStockOutCreatedEvent(so))
	return so, nil
}

// EnsureItemsEditable fails with INVALID_STATE unless the header is still
// pending. Callers run it before resolving or validating a line so a closed
// header is reported as such whatever else is wrong with the request.
func (so *StockOut) EnsureItemsEditable() error {
	return so.ensurePending("change items")
}

func (so *StockOut) ensurePending(op string) error {
	if so.Status != StockOutStatusPending {
		return invalidState("cannot %s on a %s stock-out", op, so.Status)
	}
	return nil
}

// AddItem appends a withdrawal line
func (so *StockOut) AddItem(in ItemInput) (*TransactionItem, error) {
	if err := so.ensurePending("add items"); err != nil {
		return nil, err
	}
	item, err := so.add(in)
	if err != nil {
		return nil, err
	}
	so.Touch()
	return item, nil
}

// UpdateItem edits a pending line
func (so *StockOut) UpdateItem(itemID uuid.UUID, change ItemChange) (*TransactionItem, error) {
	if err := so.ensurePending("edit items"); err != nil {
		return nil, err
	}
	item, err := so.update(itemID, change)
	if err != nil {
		return nil, err
	}
	so.Touch()
	return item, nil
}

// RemoveItem deletes a pending line
func (so *StockOut) RemoveItem(itemID uuid.UUID) error {
	if err := so.ensurePending("remove items"); err != nil {
		return err
	}
	if err := so.remove(itemID); err != nil {
		return err
	}
	so.Touch()
	return nil
}

// Approve freezes the lines for issue
func (so *StockOut) Approve() error {
	if !so.Status.CanTransitionTo(StockOutStatusApproved) {
		return invalidState("cannot approve a %s stock-out", so.Status)
	}
	if so.ItemCount() == 0 {
		return invalidState("cannot approve a stock-out without items")
	}
	now := time.Now()
	so.Status = StockOutStatusApproved
	so.ApprovedAt = &now
	so.UpdatedAt = now
	so.AddDomainEvent(NewStockOutApprovedEvent(so))
	return nil
}

// Complete marks the goods as issued. The caller commits the deductions to
// the ledger in the same unit of work.
func (so *StockOut) Complete() error {
	if !so.Status.CanTransitionTo(StockOutStatusCompleted) {
		return invalidState("cannot complete a %s stock-out; it must be approved first", so.Status)
	}
	if so.ItemCount() == 0 {
		return invalidState("cannot complete a stock-out without items")
	}
	now := time.Now()
	so.Status = StockOutStatusCompleted
	so.CompletedAt = &now
	so.UpdatedAt = now
	so.AddDomainEvent(NewStockOutCompletedEvent(so))
	return nil
}

// Reject cancels the request
func (so *StockOut) Reject(reason string) error {
	if !so.Status.CanTransitionTo(StockOutStatusRejected) {
		return invalidState("cannot reject a %s stock-out", so.Status)
	}
	now := time.Now()
	so.Status = StockOutStatusRejected
	so.RejectedAt = &now
	so.RejectReason = strings.TrimSpace(reason)
	so.UpdatedAt = now
	so.AddDomainEvent(NewStockOutRejectedEvent(so))
	return nil
}
