package inventory

import (
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// ValidationMode selects how the requested piece count is obtained
type ValidationMode string

const (
	// ModeStandard derives pieces from quantity x conversion factors
	ModeStandard ValidationMode = "standard"
	// ModeFlexible takes an exact piece count from the caller, for
	// withdrawals that do not align to whole packs or boxes
	ModeFlexible ValidationMode = "flexible"
)

// IsValid reports whether m is a known mode
func (m ValidationMode) IsValid() bool {
	return m == ModeStandard || m == ModeFlexible
}

// Acceptance is a passed sufficiency check. It is advisory: the ledger
// re-verifies at commit time.
type Acceptance struct {
	AcceptedPieces int64 `json:"accepted_pieces"`
	RemainingAfter int64 `json:"remaining_after"`
}

// ValidateSufficiency accepts requested pieces when they do not exceed
// available. A negative available count is treated as zero.
func ValidateSufficiency(productID uuid.UUID, requested, available int64) (Acceptance, error) {
	if requested <= 0 {
		return Acceptance{}, shared.ErrInvalidConversion.WithDetail("requested_pieces", requested)
	}
	if available < 0 {
		available = 0
	}
	if requested > available {
		return Acceptance{}, NewInsufficientStockError(productID, available, requested)
	}
	return Acceptance{AcceptedPieces: requested, RemainingAfter: available - requested}, nil
}

// Withdrawal describes how many pieces a stock-out line takes
type Withdrawal struct {
	Unit         valueobject.UnitType
	Quantity     int64 // units of Unit, ignored in flexible mode
	Mode         ValidationMode
	ActualPieces int64 // flexible mode only
	Override     *valueobject.ConversionOverride
}

// WithdrawalPieces is the resolved piece count of a withdrawal together
// with the factors that produced it.
type WithdrawalPieces struct {
	Pieces          int64
	Quantity        int64 // what the line records as its quantity
	Factors         valueobject.ConversionFactors
	OverrideApplied bool
	Flexible        bool
}

// Resolve computes the piece count of w against the product's stored factors.
func (w Withdrawal) Resolve(stored valueobject.ConversionFactors) (WithdrawalPieces, error) {
	factors, err := w.Override.Apply(stored)
	if err != nil {
		return WithdrawalPieces{}, err
	}
	out := WithdrawalPieces{Factors: factors, OverrideApplied: !w.Override.IsEmpty()}

	switch w.Mode {
	case ModeFlexible:
		if w.Unit == valueobject.UnitPiece {
			return WithdrawalPieces{}, shared.NewValidationError("mode", "flexible mode applies to pack or box scans only")
		}
		if w.ActualPieces <= 0 {
			return WithdrawalPieces{}, shared.ErrInvalidConversion.WithDetail("actual_pieces", w.ActualPieces)
		}
		out.Pieces = w.ActualPieces
		out.Quantity = w.ActualPieces
		out.Flexible = true
	case ModeStandard, "":
		pieces, err := factors.ToPieces(w.Unit, w.Quantity)
		if err != nil {
			return WithdrawalPieces{}, err
		}
		out.Pieces = pieces
		out.Quantity = w.Quantity
	default:
		return WithdrawalPieces{}, shared.NewValidationError("mode", "mode must be standard or flexible")
	}
	return out, nil
}
