package valueobject

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	"github.com/stockflow/backend/internal/domain/shared"
)

// UnitType is the packaging granularity detected from a scanned barcode.
type UnitType string

const (
	UnitPiece UnitType = "piece"
	UnitPack  UnitType = "pack"
	UnitBox   UnitType = "box"
)

// AllUnitTypes lists granularities from smallest to largest
func AllUnitTypes() []UnitType {
	return []UnitType{UnitPiece, UnitPack, UnitBox}
}

// ParseUnitType parses a case-insensitive unit name
func ParseUnitType(s string) (UnitType, error) {
	u := UnitType(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", shared.NewValidationError("unit_type", fmt.Sprintf("unknown unit type %q", s))
	}
	return u, nil
}

// IsValid reports whether u is one of piece, pack or box
func (u UnitType) IsValid() bool {
	switch u {
	case UnitPiece, UnitPack, UnitBox:
		return true
	}
	return false
}

// String returns the string representation of the unit type
func (u UnitType) String() string {
	return string(u)
}

// Value implements driver.Valuer
func (u UnitType) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan implements sql.Scanner
func (u *UnitType) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*u = UnitType(v)
	case []byte:
		*u = UnitType(v)
	case nil:
		*u = ""
	default:
		return fmt.Errorf("cannot scan %T into UnitType", value)
	}
	return nil
}

// ConversionFactors describes how pieces are bundled for one product.
// Invariant: PiecesPerBox() == PiecesPerPack * PacksPerBox.
type ConversionFactors struct {
	PiecesPerPack int64 `json:"pieces_per_pack"`
	PacksPerBox   int64 `json:"packs_per_box"`
}

// NewConversionFactors validates and builds conversion factors
func NewConversionFactors(piecesPerPack, packsPerBox int64) (ConversionFactors, error) {
	f := ConversionFactors{PiecesPerPack: piecesPerPack, PacksPerBox: packsPerBox}
	if err := f.Validate(); err != nil {
		return ConversionFactors{}, err
	}
	return f, nil
}

// Validate checks that both factors are at least 1 and that a full box is
// representable.
func (f ConversionFactors) Validate() error {
	if f.PiecesPerPack < 1 {
		return shared.ErrInvalidConversion.WithDetail("pieces_per_pack", f.PiecesPerPack)
	}
	if f.PacksPerBox < 1 {
		return shared.ErrInvalidConversion.WithDetail("packs_per_box", f.PacksPerBox)
	}
	if f.PiecesPerPack > math.MaxInt64/f.PacksPerBox {
		return shared.ErrInvalidConversion.WithDetail("pieces_per_box", "overflow")
	}
	return nil
}

// PiecesPerBox returns pieces_per_pack * packs_per_box
func (f ConversionFactors) PiecesPerBox() int64 {
	return f.PiecesPerPack * f.PacksPerBox
}

// PiecesPer returns how many pieces one unit of u holds
func (f ConversionFactors) PiecesPer(u UnitType) (int64, error) {
	switch u {
	case UnitPiece:
		return 1, nil
	case UnitPack:
		return f.PiecesPerPack, nil
	case UnitBox:
		return f.PiecesPerBox(), nil
	}
	return 0, shared.NewValidationError("unit_type", fmt.Sprintf("unknown unit type %q", u))
}

// ToPieces converts quantity units of u into a canonical piece count.
// Quantity must be positive; the result is exact, never rounded.
func (f ConversionFactors) ToPieces(u UnitType, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, shared.ErrInvalidConversion.WithDetail("quantity", quantity)
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}
	per, err := f.PiecesPer(u)
	if err != nil {
		return 0, err
	}
	if quantity > math.MaxInt64/per {
		return 0, shared.ErrInvalidConversion.WithDetail("quantity", "overflow")
	}
	return quantity * per, nil
}

// FromPieces expresses a piece count in whole units of u, rounding down.
// Invalid factors or unit yield zero.
func (f ConversionFactors) FromPieces(u UnitType, pieces int64) int64 {
	if pieces <= 0 || f.Validate() != nil {
		return 0
	}
	per, err := f.PiecesPer(u)
	if err != nil {
		return 0
	}
	return pieces / per
}

// ConversionOverride supersedes a product's stored factors for a single
// stock-out line, for when the physical packaging differs from the catalog.
// A nil field keeps the stored value.
type ConversionOverride struct {
	PiecesPerPack *int64 `json:"pieces_per_pack,omitempty"`
	PacksPerBox   *int64 `json:"packs_per_box,omitempty"`
}

// IsEmpty reports whether the override changes nothing
func (o *ConversionOverride) IsEmpty() bool {
	return o == nil || (o.PiecesPerPack == nil && o.PacksPerBox == nil)
}

// Apply returns the factors with the override's fields substituted
func (o *ConversionOverride) Apply(f ConversionFactors) (ConversionFactors, error) {
	if o.IsEmpty() {
		return f, nil
	}
	out := f
	if o.PiecesPerPack != nil {
		out.PiecesPerPack = *o.PiecesPerPack
	}
	if o.PacksPerBox != nil {
		out.PacksPerBox = *o.PacksPerBox
	}
	if err := out.Validate(); err != nil {
		return ConversionFactors{}, err
	}
	return out, nil
}
