package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
)

// RegisterProductRequest represents a request to register a new product
type RegisterProductRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	PartNumber    string           `json:"part_number" binding:"max=100"`
	PieceBarcode  string           `json:"piece_barcode" binding:"omitempty,barcode"`
	PackBarcode   string           `json:"pack_barcode" binding:"omitempty,barcode"`
	BoxBarcode    string           `json:"box_barcode" binding:"omitempty,barcode"`
	PiecesPerPack int64            `json:"pieces_per_pack" binding:"required,min=1"`
	PacksPerBox   int64            `json:"packs_per_box" binding:"required,min=1"`
	BasePrice     *decimal.Decimal `json:"base_price"`
}

// Barcodes returns the barcode set of the request
func (r RegisterProductRequest) Barcodes() catalog.Barcodes {
	return catalog.Barcodes{Piece: r.PieceBarcode, Pack: r.PackBarcode, Box: r.BoxBarcode}
}

// UpdatePackagingRequest replaces a product's conversion factors
type UpdatePackagingRequest struct {
	PiecesPerPack int64 `json:"pieces_per_pack" binding:"required,min=1"`
	PacksPerBox   int64 `json:"packs_per_box" binding:"required,min=1"`
}

// UpdatePriceRequest sets the piece price. Pack and box prices follow
// from it and the conversion factors.
type UpdatePriceRequest struct {
	BasePrice *decimal.Decimal `json:"base_price" binding:"required"`
}

// UpdateBarcodesRequest replaces a product's barcode set
type UpdateBarcodesRequest struct {
	PieceBarcode string `json:"piece_barcode" binding:"omitempty,barcode"`
	PackBarcode  string `json:"pack_barcode" binding:"omitempty,barcode"`
	BoxBarcode   string `json:"box_barcode" binding:"omitempty,barcode"`
}

// Barcodes returns the barcode set of the request
func (r UpdateBarcodesRequest) Barcodes() catalog.Barcodes {
	return catalog.Barcodes{Piece: r.PieceBarcode, Pack: r.PackBarcode, Box: r.BoxBarcode}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
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
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
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
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}

// RegistrationKind tags the outcome of a register or barcode update call
type RegistrationKind string

const (
	// RegistrationNew means the product was persisted
	RegistrationNew RegistrationKind = "new"
	// RegistrationDuplicate means a barcode collided and nothing was persisted
	RegistrationDuplicate RegistrationKind = "duplicate"
)

// RegistrationResult is the typed outcome of RegisterProduct and
// UpdateBarcodes. Conflicts is also filled on a forced save.
type RegistrationResult struct {
	Kind      RegistrationKind          `json:"kind"`
	Product   *ProductResponse          `json:"product,omitempty"`
	Conflicts []catalog.BarcodeConflict `json:"conflicts,omitempty"`
	Forced    bool                      `json:"forced,omitempty"`
}
