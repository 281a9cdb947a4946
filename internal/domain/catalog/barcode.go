package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

const maxBarcodeLength = 64

// Barcodes holds the up-to-three barcode strings printed on a product's
// piece, pack and box packaging. Empty means "no barcode at that level".
type Barcodes struct {
	Piece string `json:"piece_barcode,omitempty"`
	Pack  string `json:"pack_barcode,omitempty"`
	Box   string `json:"box_barcode,omitempty"`
}

// NormalizeBarcode trims surrounding whitespace, the only normalization
// scanners need: codes are otherwise compared byte for byte.
func NormalizeBarcode(code string) string {
	return strings.TrimSpace(code)
}

// Normalize returns a copy with every slot trimmed
func (b Barcodes) Normalize() Barcodes {
	return Barcodes{
		Piece: NormalizeBarcode(b.Piece),
		Pack:  NormalizeBarcode(b.Pack),
		Box:   NormalizeBarcode(b.Box),
	}
}

// IsEmpty reports whether no slot carries a barcode
func (b Barcodes) IsEmpty() bool {
	return b.Piece == "" && b.Pack == "" && b.Box == ""
}

// For returns the barcode registered for unit u
func (b Barcodes) For(u valueobject.UnitType) string {
	switch u {
	case valueobject.UnitPiece:
		return b.Piece
	case valueobject.UnitPack:
		return b.Pack
	case valueobject.UnitBox:
		return b.Box
	}
	return ""
}

// Match returns the unit whose slot equals code
func (b Barcodes) Match(code string) (valueobject.UnitType, bool) {
	code = NormalizeBarcode(code)
	if code == "" {
		return "", false
	}
	for _, u := range valueobject.AllUnitTypes() {
		if b.For(u) == code {
			return u, true
		}
	}
	return "", false
}

// Codes lists the non-empty barcodes, piece first
func (b Barcodes) Codes() []string {
	codes := make([]string, 0, 3)
	for _, u := range valueobject.AllUnitTypes() {
		if c := b.For(u); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// Validate checks lengths and that one product never reuses a code across
// its own slots, which would make the detected unit ambiguous.
func (b Barcodes) Validate() error {
	seen := make(map[string]valueobject.UnitType, 3)
	for _, u := range valueobject.AllUnitTypes() {
		code := b.For(u)
		if code == "" {
			continue
		}
		if len(code) > maxBarcodeLength {
			return shared.NewValidationError(u.String()+"_barcode", "barcode cannot exceed 64 characters")
		}
		if prev, ok := seen[code]; ok {
			return shared.NewValidationError(u.String()+"_barcode",
				"barcode is already used for the "+prev.String()+" level of this product")
		}
		seen[code] = u
	}
	return nil
}

// BarcodeConflict describes a barcode that another product already carries
type BarcodeConflict struct {
	Barcode     string               `json:"barcode"`
	ProductID   uuid.UUID            `json:"product_id"`
	ProductName string               `json:"product_name"`
	UnitType    valueobject.UnitType `json:"unit_type"`
}

// FindConflicts lists the barcodes in b that appear on any of others.
// The product identified by self is skipped so that re-saving a product's
// own codes is not a conflict.
func FindConflicts(b Barcodes, self uuid.UUID, others []*Product) []BarcodeConflict {
	var conflicts []BarcodeConflict
	for _, code := range b.Codes() {
		for _, other := range others {
			if other == nil || other.ID == self {
				continue
			}
			if u, ok := other.Barcodes.Match(code); ok {
				conflicts = append(conflicts, BarcodeConflict{
					Barcode:     code,
					ProductID:   other.ID,
					ProductName: other.Name,
					UnitType:    u,
				})
			}
		}
	}
	return conflicts
}
