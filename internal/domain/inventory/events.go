package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeStockIn  = "StockIn"
	AggregateTypeStockOut = "StockOut"
	AggregateTypeLedger   = "StockLedger"
)

// Event type constants
const (
	EventTypeStockInCreated    = "StockInCreated"
	EventTypeStockInCompleted  = "StockInCompleted"
	EventTypeStockInRejected   = "StockInRejected"
	EventTypeStockOutCreated   = "StockOutCreated"
	EventTypeStockOutApproved  = "StockOutApproved"
	EventTypeStockOutCompleted = "StockOutCompleted"
	EventTypeStockOutRejected  = "StockOutRejected"
	EventTypeStockScanDeducted = "StockScanDeducted"
)

// StockInCreatedEvent is published when a receipt header is opened
type StockInCreatedEvent struct {
	shared.BaseDomainEvent
	StockInID    uuid.UUID `json:"stock_in_id"`
	Reference    string    `json:"reference"`
	SupplierName string    `json:"supplier_name,omitempty"`
}

// NewStockInCreatedEvent creates a new StockInCreatedEvent
func NewStockInCreatedEvent(si *StockIn) *StockInCreatedEvent {
	return &StockInCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockInCreated, AggregateTypeStockIn, si.ID),
		StockInID:       si.ID,
		Reference:       si.Reference,
		SupplierName:    si.SupplierName,
	}
}

// StockInCompletedEvent is published when received pieces enter the ledger
type StockInCompletedEvent struct {
	shared.BaseDomainEvent
	StockInID   uuid.UUID       `json:"stock_in_id"`
	Reference   string          `json:"reference"`
	ItemCount   int             `json:"item_count"`
	TotalPieces int64           `json:"total_pieces"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewStockInCompletedEvent creates a new StockInCompletedEvent
func NewStockInCompletedEvent(si *StockIn) *StockInCompletedEvent {
	return &StockInCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockInCompleted, AggregateTypeStockIn, si.ID),
		StockInID:       si.ID,
		Reference:       si.Reference,
		ItemCount:       si.ItemCount(),
		TotalPieces:     si.TotalPieces(),
		TotalAmount:     si.TotalAmount(),
	}
}

// StockInRejectedEvent is published when a receipt is discarded
type StockInRejectedEvent struct {
	shared.BaseDomainEvent
	StockInID uuid.UUID `json:"stock_in_id"`
	Reason    string    `json:"reason,omitempty"`
}

// NewStockInRejectedEvent creates a new StockInRejectedEvent
func NewStockInRejectedEvent(si *StockIn) *StockInRejectedEvent {
	return &StockInRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockInRejected, AggregateTypeStockIn, si.ID),
		StockInID:       si.ID,
		Reason:          si.RejectReason,
	}
}

// StockOutCreatedEvent is published when an issue request is opened
type StockOutCreatedEvent struct {
	shared.BaseDomainEvent
	StockOutID uuid.UUID `json:"stock_out_id"`
	Reference  string    `json:"reference"`
	Department string    `json:"department,omitempty"`
	Requestor  string    `json:"requestor"`
}

// NewStockOutCreatedEvent creates a new StockOutCreatedEvent
func NewStockOutCreatedEvent(so *StockOut) *StockOutCreatedEvent {
	return &StockOutCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockOutCreated, AggregateTypeStockOut, so.ID),
		StockOutID:      so.ID,
		Reference:       so.Reference,
		Department:      so.Department,
		Requestor:       so.Requestor,
	}
}

// StockOutApprovedEvent is published when an issue request is approved
type StockOutApprovedEvent struct {
	shared.BaseDomainEvent
	StockOutID  uuid.UUID `json:"stock_out_id"`
	ItemCount   int       `json:"item_count"`
	TotalPieces int64     `json:"total_pieces"`
}

// NewStockOutApprovedEvent creates a new StockOutApprovedEvent
func NewStockOutApprovedEvent(so *StockOut) *StockOutApprovedEvent {
	return &StockOutApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockOutApproved, AggregateTypeStockOut, so.ID),
		StockOutID:      so.ID,
		ItemCount:       so.ItemCount(),
		TotalPieces:     so.TotalPieces(),
	}
}

// StockOutCompletedEvent is published when issued pieces leave the ledger
type StockOutCompletedEvent struct {
	shared.BaseDomainEvent
	StockOutID  uuid.UUID       `json:"stock_out_id"`
	Reference   string          `json:"reference"`
	TotalPieces int64           `json:"total_pieces"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewStockOutCompletedEvent creates a new StockOutCompletedEvent
func NewStockOutCompletedEvent(so *StockOut) *StockOutCompletedEvent {
	return &StockOutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockOutCompleted, AggregateTypeStockOut, so.ID),
		StockOutID:      so.ID,
		Reference:       so.Reference,
		TotalPieces:     so.TotalPieces(),
		TotalAmount:     so.TotalAmount(),
	}
}

// StockOutRejectedEvent is published when an issue request is cancelled
type StockOutRejectedEvent struct {
	shared.BaseDomainEvent
	StockOutID uuid.UUID      `json:"stock_out_id"`
	FromStatus StockOutStatus `json:"from_status"`
	Reason     string         `json:"reason,omitempty"`
}

// NewStockOutRejectedEvent creates a new StockOutRejectedEvent.
// FromStatus is approved when ApprovedAt is set, pending otherwise.
func NewStockOutRejectedEvent(so *StockOut) *StockOutRejectedEvent {
	from := StockOutStatusPending
	if so.ApprovedAt != nil {
		from = StockOutStatusApproved
	}
	return &StockOutRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockOutRejected, AggregateTypeStockOut, so.ID),
		StockOutID:      so.ID,
		FromStatus:      from,
		Reason:          so.RejectReason,
	}
}

// StockScanDeductedEvent is published after a scan-and-deduct commit
type StockScanDeductedEvent struct {
	shared.BaseDomainEvent
	ScanID         string               `json:"scan_id"`
	ProductID      uuid.UUID            `json:"product_id"`
	UnitType       valueobject.UnitType `json:"unit_type"`
	PiecesDeducted int64                `json:"pieces_deducted"`
	RemainingStock int64                `json:"remaining_stock"`
}

// NewStockScanDeductedEvent creates a new StockScanDeductedEvent
func NewStockScanDeductedEvent(rec *ScanRecord) *StockScanDeductedEvent {
	return &StockScanDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockScanDeducted, AggregateTypeLedger, rec.ProductID),
		ScanID:          rec.ScanID,
		ProductID:       rec.ProductID,
		UnitType:        rec.UnitType,
		PiecesDeducted:  rec.PiecesDeducted,
		RemainingStock:  rec.RemainingStock,
	}
}
