package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// ScanRecord is the durable outcome of one scan-and-deduct call. Its
// ScanID is unique, so a replayed scan finds the first outcome instead
// of deducting twice.
type ScanRecord struct {
	ScanID         string
	ProductID      uuid.UUID
	ProductName    string
	Barcode        string
	UnitType       valueobject.UnitType
	Quantity       int64
	Flexible       bool
	PiecesDeducted int64
	Amount         decimal.Decimal
	RemainingStock int64
	LocationID     *uuid.UUID
	CreatedAt      time.Time
}

// MaxScanIDLength bounds client-supplied scan ids
const MaxScanIDLength = 128

// NormalizeScanID trims and validates a client scan id
func NormalizeScanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", shared.NewValidationError("scan_id", "scan id is required")
	}
	if len(id) > MaxScanIDLength {
		return "", shared.NewValidationError("scan_id", "scan id cannot exceed 128 characters")
	}
	return id, nil
}

// ScanRecordRepository stores scan outcomes
type ScanRecordRepository interface {
	// FindByScanID returns shared.ErrNotFound when the scan was never committed
	FindByScanID(ctx context.Context, scanID string) (*ScanRecord, error)

	// Create inserts rec, failing with shared.ErrAlreadyExists on a
	// duplicate scan id
	Create(ctx context.Context, rec *ScanRecord) error
}
