package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// ScannedProduct is the product part of a scan result
type ScannedProduct struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	PartNumber        string          `json:"part_number"`
	PieceBarcode      string          `json:"piece_barcode,omitempty"`
	PackBarcode       string          `json:"pack_barcode,omitempty"`
	BoxBarcode        string          `json:"box_barcode,omitempty"`
	PiecesPerPack     int64           `json:"pieces_per_pack"`
	PacksPerBox       int64           `json:"packs_per_box"`
	TotalPiecesPerBox int64           `json:"total_pieces_per_box"`
	BasePrice         decimal.Decimal `json:"base_price"`
}

func toScannedProduct(p *catalog.Product) ScannedProduct {
	return ScannedProduct{
		ID:                p.ID,
		Name:              p.Name,
		PartNumber:        p.PartNumber,
		PieceBarcode:      p.Barcodes.Piece,
		PackBarcode:       p.Barcodes.Pack,
		BoxBarcode:        p.Barcodes.Box,
		PiecesPerPack:     p.Factors.PiecesPerPack,
		PacksPerBox:       p.Factors.PacksPerBox,
		TotalPiecesPerBox: p.TotalPiecesPerBox(),
		BasePrice:         p.BasePrice,
	}
}

// ScanResult is the outcome of resolving a barcode
type ScanResult struct {
	Barcode            string               `json:"barcode"`
	Product            ScannedProduct       `json:"product"`
	DetectedUnitType   valueobject.UnitType `json:"detected_unit_type"`
	PiecesPerUnit      int64                `json:"pieces_per_unit"`
	UnitPrice          decimal.Decimal      `json:"unit_price"`
	AvailableUnits     int64                `json:"available_units"`
	TotalPiecesInStock int64                `json:"total_pieces_in_stock"`
	StorageLocations   int                  `json:"storage_locations"`
}

// LookupKind tags a stock-in barcode lookup
type LookupKind string

const (
	LookupFound LookupKind = "found"
	LookupNew   LookupKind = "new"
)

// LookupResult is the stock-in view of a barcode: an unknown code is the
// new-product path, not an error.
type LookupResult struct {
	Kind    LookupKind  `json:"kind"`
	Barcode string      `json:"barcode"`
	Scan    *ScanResult `json:"scan,omitempty"`
}

// ConversionRequest converts a quantity of one unit into pieces. Factors
// come from ProductID when given, otherwise from the request.
type ConversionRequest struct {
	Unit          string                          `json:"unit" binding:"required,unit_type"`
	Quantity      int64                           `json:"quantity" binding:"required"`
	ProductID     *uuid.UUID                      `json:"product_id"`
	PiecesPerPack int64                           `json:"pieces_per_pack"`
	PacksPerBox   int64                           `json:"packs_per_box"`
	Override      *valueobject.ConversionOverride `json:"override"`
}

// ConversionResponse is the outcome of a conversion
type ConversionResponse struct {
	Unit            valueobject.UnitType `json:"unit"`
	Quantity        int64                `json:"quantity"`
	PiecesPerPack   int64                `json:"pieces_per_pack"`
	PacksPerBox     int64                `json:"packs_per_box"`
	PiecesPerUnit   int64                `json:"pieces_per_unit"`
	TotalPieces     int64                `json:"total_pieces"`
	OverrideApplied bool                 `json:"override_applied"`
}

// SufficiencyRequest checks a withdrawal against available pieces.
// Standard mode checks RequestedPieces; flexible mode checks ActualPieces.
// AvailablePieces is read from the ledger when omitted.
type SufficiencyRequest struct {
	ProductID       *uuid.UUID `json:"product_id"`
	Mode            string     `json:"mode" binding:"omitempty,oneof=standard flexible"`
	Unit            string     `json:"unit" binding:"omitempty,unit_type"`
	RequestedPieces int64      `json:"requested_pieces"`
	ActualPieces    int64      `json:"actual_pieces"`
	AvailablePieces *int64     `json:"available_pieces"`
}

// SufficiencyResponse is an accepted sufficiency check
type SufficiencyResponse struct {
	Mode            inventory.ValidationMode `json:"mode"`
	AvailablePieces int64                    `json:"available_pieces"`
	AcceptedPieces  int64                    `json:"accepted_pieces"`
	RemainingAfter  int64                    `json:"remaining_after"`
}

// CreateLocationRequest creates a storage location
type CreateLocationRequest struct {
	Warehouse string `json:"warehouse" binding:"required,max=100"`
	Container string `json:"container" binding:"max=100"`
	Rack      string `json:"rack" binding:"max=100"`
}

// LocationResponse represents a storage location
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Warehouse string    `json:"warehouse"`
	Container string    `json:"container,omitempty"`
	Rack      string    `json:"rack,omitempty"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

func toLocationResponse(l *inventory.StorageLocation) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Warehouse: l.Warehouse,
		Container: l.Container,
		Rack:      l.Rack,
		Label:     l.Label(),
		CreatedAt: l.CreatedAt,
	}
}

// LocationBalance is a product's balance at one location
type LocationBalance struct {
	LocationID    uuid.UUID `json:"location_id"`
	LocationLabel string    `json:"location_label"`
	Pieces        int64     `json:"pieces"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductStockResponse lists a product's per-location balances
type ProductStockResponse struct {
	ProductID      uuid.UUID         `json:"product_id"`
	ProductName    string            `json:"product_name"`
	TotalPieces    int64             `json:"total_pieces"`
	LocationCount  int               `json:"location_count"`
	AvailableBoxes int64             `json:"available_boxes"`
	AvailablePacks int64             `json:"available_packs"`
	Balances       []LocationBalance `json:"balances"`
}

// CreateStockInRequest opens a stock-in header
type CreateStockInRequest struct {
	SupplierName string `json:"supplier_name" binding:"max=200"`
	Notes        string `json:"notes" binding:"max=2000"`
}

// CreateStockOutRequest opens a stock-out header
type CreateStockOutRequest struct {
	Department string `json:"department" binding:"max=100"`
	Requestor  string `json:"requestor" binding:"required,max=100"`
	Notes      string `json:"notes" binding:"max=2000"`
}

// AddStockInItemRequest scans one line into a stock-in
type AddStockInItemRequest struct {
	Barcode      string           `json:"barcode" binding:"required,barcode"`
	Quantity     int64            `json:"quantity" binding:"required"`
	LocationID   *uuid.UUID       `json:"location_id"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
}

// AddStockOutItemRequest scans one line into a stock-out. In flexible
// mode ActualPieces replaces Quantity and the price is per piece.
type AddStockOutItemRequest struct {
	Barcode      string                          `json:"barcode" binding:"required,barcode"`
	Quantity     int64                           `json:"quantity"`
	Flexible     bool                            `json:"flexible"`
	ActualPieces int64                           `json:"actual_pieces"`
	Override     *valueobject.ConversionOverride `json:"override"`
	LocationID   *uuid.UUID                      `json:"location_id"`
	PricePerUnit *decimal.Decimal                `json:"price_per_unit"`
}

func (r AddStockOutItemRequest) withdrawal(unit valueobject.UnitType) inventory.Withdrawal {
	mode := inventory.ModeStandard
	if r.Flexible {
		mode = inventory.ModeFlexible
	}
	return inventory.Withdrawal{
		Unit:         unit,
		Quantity:     r.Quantity,
		Mode:         mode,
		ActualPieces: r.ActualPieces,
		Override:     r.Override,
	}
}

// UpdateItemRequest edits a pending line; omitted fields are unchanged
type UpdateItemRequest struct {
	Quantity     *int64           `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	LocationID   *uuid.UUID       `json:"location_id"`
}

func (r UpdateItemRequest) change() inventory.ItemChange {
	return inventory.ItemChange{
		Quantity:     r.Quantity,
		PricePerUnit: r.PricePerUnit,
		LocationID:   r.LocationID,
	}
}

// TransitionRequest applies a workflow action; Reason is used by reject
type TransitionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// TransactionItemResponse represents a header line
type TransactionItemResponse struct {
	ID              uuid.UUID            `json:"id"`
	ProductID       uuid.UUID            `json:"product_id"`
	ProductName     string               `json:"product_name"`
	Barcode         string               `json:"barcode"`
	UnitType        valueobject.UnitType `json:"unit_type"`
	Quantity        int64                `json:"quantity"`
	TotalPieces     int64                `json:"total_pieces"`
	PiecesPerPack   int64                `json:"pieces_per_pack"`
	PacksPerBox     int64                `json:"packs_per_box"`
	OverrideApplied bool                 `json:"override_applied"`
	Flexible        bool                 `json:"flexible"`
	PricePerUnit    decimal.Decimal      `json:"price_per_unit"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	LocationID      *uuid.UUID           `json:"location_id,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func toItemResponses(items []inventory.TransactionItem) []TransactionItemResponse {
	out := make([]TransactionItemResponse, len(items))
	for i, it := range items {
		out[i] = TransactionItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Barcode:         it.Barcode,
			UnitType:        it.UnitType,
			Quantity:        it.Quantity,
			TotalPieces:     it.TotalPieces,
			PiecesPerPack:   it.Factors.PiecesPerPack,
			PacksPerBox:     it.Factors.PacksPerBox,
			OverrideApplied: it.OverrideApplied,
			Flexible:        it.Flexible,
			PricePerUnit:    it.PricePerUnit,
			TotalAmount:     it.TotalAmount,
			LocationID:      it.LocationID,
			CreatedAt:       it.CreatedAt,
			UpdatedAt:       it.UpdatedAt,
		}
	}
	return out
}

// StockInResponse represents a stock-in header with its lines
type StockInResponse struct {
	ID           uuid.UUID                 `json:"id"`
	Reference    string                    `json:"reference"`
	SupplierName string                    `json:"supplier_name"`
	Notes        string                    `json:"notes"`
	Status       string                    `json:"status"`
	ItemCount    int                       `json:"item_count"`
	TotalPieces  int64                     `json:"total_pieces"`
	TotalAmount  decimal.Decimal           `json:"total_amount"`
	CompletedAt  *time.Time                `json:"completed_at,omitempty"`
	RejectedAt   *time.Time                `json:"rejected_at,omitempty"`
	RejectReason string                    `json:"reject_reason,omitempty"`
	Items        []TransactionItemResponse `json:"items,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Version      int                       `json:"version"`
}

// ToStockInResponse converts a domain StockIn; lines are included when
// withItems is set.
func ToStockInResponse(si *inventory.StockIn, withItems bool) StockInResponse {
	resp := StockInResponse{
		ID:           si.ID,
		Reference:    si.Reference,
		SupplierName: si.SupplierName,
		Notes:        si.Notes,
		Status:       si.Status.String(),
		ItemCount:    si.ItemCount(),
		TotalPieces:  si.TotalPieces(),
		TotalAmount:  si.TotalAmount(),
		CompletedAt:  si.CompletedAt,
		RejectedAt:   si.RejectedAt,
		RejectReason: si.RejectReason,
		CreatedAt:    si.CreatedAt,
		UpdatedAt:    si.UpdatedAt,
		Version:      si.Version,
	}
	if withItems {
		resp.Items = toItemResponses(si.Items)
	}
	return resp
}

// StockOutResponse represents a stock-out header with its lines
type StockOutResponse struct {
	ID           uuid.UUID                 `json:"id"`
	Reference    string                    `json:"reference"`
	Department   string                    `json:"department"`
	Requestor    string                    `json:"requestor"`
	Notes        string                    `json:"notes"`
	Status       string                    `json:"status"`
	ItemCount    int                       `json:"item_count"`
	TotalPieces  int64                     `json:"total_pieces"`
	TotalAmount  decimal.Decimal           `json:"total_amount"`
	ApprovedAt   *time.Time                `json:"approved_at,omitempty"`
	CompletedAt  *time.Time                `json:"completed_at,omitempty"`
	RejectedAt   *time.Time                `json:"rejected_at,omitempty"`
	RejectReason string                    `json:"reject_reason,omitempty"`
	Items        []TransactionItemResponse `json:"items,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Version      int                       `json:"version"`
}

// ToStockOutResponse converts a domain StockOut
func ToStockOutResponse(so *inventory.StockOut, withItems bool) StockOutResponse {
	resp := StockOutResponse{
		ID:           so.ID,
		Reference:    so.Reference,
		Department:   so.Department,
		Requestor:    so.Requestor,
		Notes:        so.Notes,
		Status:       so.Status.String(),
		ItemCount:    so.ItemCount(),
		TotalPieces:  so.TotalPieces(),
		TotalAmount:  so.TotalAmount(),
		ApprovedAt:   so.ApprovedAt,
		CompletedAt:  so.CompletedAt,
		RejectedAt:   so.RejectedAt,
		RejectReason: so.RejectReason,
		CreatedAt:    so.CreatedAt,
		UpdatedAt:    so.UpdatedAt,
		Version:      so.Version,
	}
	if withItems {
		resp.Items = toItemResponses(so.Items)
	}
	return resp
}

// TransitionResult is the header state after a workflow action
type TransitionResult struct {
	Kind      inventory.HeaderKind `json:"kind"`
	ID        uuid.UUID            `json:"id"`
	Reference string               `json:"reference"`
	Action    inventory.Action     `json:"action"`
	Status    string               `json:"status"`
}

// ScanDeductRequest is one walk-up withdrawal scan. ScanID is the client
// nonce that makes retries safe.
type ScanDeductRequest struct {
	ScanID       string                          `json:"scan_id" binding:"required,max=128"`
	Barcode      string                          `json:"barcode" binding:"required,barcode"`
	Quantity     int64                           `json:"quantity"`
	Flexible     bool                            `json:"flexible"`
	ActualPieces int64                           `json:"actual_pieces"`
	Override     *valueobject.ConversionOverride `json:"override"`
	LocationID   *uuid.UUID                      `json:"location_id"`
}

// ScanDeductResult is the committed, or replayed, outcome of a scan
type ScanDeductResult struct {
	ScanID         string               `json:"scan_id"`
	ProductID      uuid.UUID            `json:"product_id"`
	ProductName    string               `json:"product_name"`
	Barcode        string               `json:"barcode"`
	UnitType       valueobject.UnitType `json:"unit_type"`
	Quantity       int64                `json:"quantity"`
	Flexible       bool                 `json:"flexible"`
	PiecesDeducted int64                `json:"pieces_deducted"`
	AmountDeducted decimal.Decimal      `json:"amount_deducted"`
	RemainingStock int64                `json:"remaining_stock"`
	Replayed       bool                 `json:"replayed"`
	CreatedAt      time.Time            `json:"created_at"`
}

func toScanDeductResult(rec *inventory.ScanRecord, replayed bool) *ScanDeductResult {
	return &ScanDeductResult{
		ScanID:         rec.ScanID,
		ProductID:      rec.ProductID,
		ProductName:    rec.ProductName,
		Barcode:        rec.Barcode,
		UnitType:       rec.UnitType,
		Quantity:       rec.Quantity,
		Flexible:       rec.Flexible,
		PiecesDeducted: rec.PiecesDeducted,
		AmountDeducted: rec.Amount,
		RemainingStock: rec.RemainingStock,
		Replayed:       replayed,
		CreatedAt:      rec.CreatedAt,
	}
}
