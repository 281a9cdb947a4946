package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReferenceType names what caused a ledger movement
type ReferenceType string

const (
	ReferenceStockIn  ReferenceType = "stock_in"
	ReferenceStockOut ReferenceType = "stock_out"
	ReferenceScan     ReferenceType = "scan"
)

// Reference points a movement back to the document that caused it
type Reference struct {
	Type ReferenceType
	ID   string
}

// Direction of a ledger movement
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Movement is an append-only ledger entry for one location
type Movement struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	LocationID    uuid.UUID
	Direction     Direction
	Pieces        int64
	BalanceAfter  int64
	ReferenceType ReferenceType
	ReferenceID   string
	CreatedAt     time.Time
}

// NewMovement creates a movement stamped with a fresh id
func NewMovement(productID, locationID uuid.UUID, dir Direction, pieces, balanceAfter int64, ref Reference) Movement {
	return Movement{
		ID:            uuid.New(),
		ProductID:     productID,
		LocationID:    locationID,
		Direction:     dir,
		Pieces:        pieces,
		BalanceAfter:  balanceAfter,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		CreatedAt:     time.Now(),
	}
}

// DeductionRequest removes pieces of one product. LocationID restricts
// the draw to a single location.
type DeductionRequest struct {
	ProductID  uuid.UUID
	Pieces     int64
	LocationID *uuid.UUID
	Reference  Reference
}

// DeductionResult is the committed outcome of a deduction
type DeductionResult struct {
	PiecesDeducted  int64
	RemainingPieces int64
	Movements       []Movement
}

// AdditionRequest puts pieces of one product into one location
type AdditionRequest struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Pieces     int64
	Reference  Reference
}

// StockLedger owns per-location piece balances. CommitDeduction must
// re-check sufficiency under a row lock and either apply every draw or
// none of them.
type StockLedger interface {
	// GetAvailablePieces sums the product's positive balances and counts
	// the locations holding them
	GetAvailablePieces(ctx context.Context, productID uuid.UUID) (Availability, error)

	// GetBalances lists the product's per-location balances
	GetBalances(ctx context.Context, productID uuid.UUID) ([]StockBalance, error)

	// CommitDeduction subtracts pieces, failing with
	// InsufficientStockError when the locked balances cannot cover them
	CommitDeduction(ctx context.Context, req DeductionRequest) (*DeductionResult, error)

	// CommitAddition adds pieces to one location, creating its balance row
	CommitAddition(ctx context.Context, req AdditionRequest) (*Movement, error)

	// FindMovementsByReference lists movements produced by one document
	FindMovementsByReference(ctx context.Context, ref Reference) ([]Movement, error)
}
