package inventory

import (
	"context"
	"errors"

	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// BarcodeResolver maps a scanned code to a product and the unit granularity
// whose barcode slot matched. It never writes.
type BarcodeResolver struct {
	productRepo catalog.ProductRepository
	ledger      inventory.StockLedger
}

// NewBarcodeResolver creates a new BarcodeResolver
func NewBarcodeResolver(productRepo catalog.ProductRepository, ledger inventory.StockLedger) *BarcodeResolver {
	return &BarcodeResolver{productRepo: productRepo, ledger: ledger}
}

// Resolve returns the scan result for code. An unknown code is
// shared.ErrNotFound and a code carried by several products is
// shared.ErrAmbiguousBarcode.
func (r *BarcodeResolver) Resolve(ctx context.Context, code string) (*ScanResult, error) {
	product, unit, err := resolveProduct(ctx, r.productRepo, code)
	if err != nil {
		return nil, err
	}
	return buildScanResult(ctx, r.ledger, product, unit)
}

// Lookup is the stock-in entry point: NotFound becomes Kind=new so the
// caller can move on to product registration.
func (r *BarcodeResolver) Lookup(ctx context.Context, code string) (*LookupResult, error) {
	code = catalog.NormalizeBarcode(code)
	scan, err := r.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &LookupResult{Kind: LookupNew, Barcode: code}, nil
		}
		return nil, err
	}
	return &LookupResult{Kind: LookupFound, Barcode: code, Scan: scan}, nil
}

func resolveProduct(ctx context.Context, repo catalog.ProductRepository, code string) (*catalog.Product, valueobject.UnitType, error) {
	code = catalog.NormalizeBarcode(code)
	if code == "" {
		return nil, "", shared.NewValidationError("barcode", "barcode is required")
	}

	matches, err := repo.FindByBarcode(ctx, code)
	if err != nil {
		return nil, "", err
	}
	switch len(matches) {
	case 0:
		return nil, "", shared.ErrNotFound.WithDetail("barcode", code)
	case 1:
	default:
		ids := make([]string, len(matches))
		for i, p := range matches {
			ids[i] = p.ID.String()
		}
		return nil, "", shared.ErrAmbiguousBarcode.
			WithDetail("barcode", code).
			WithDetail("product_ids", ids)
	}

	product := matches[0]
	unit, ok := product.DetectUnit(code)
	if !ok {
		return nil, "", shared.ErrNotFound.WithDetail("barcode", code)
	}
	return product, unit, nil
}

func buildScanResult(ctx context.Context, ledger inventory.StockLedger, product *catalog.Product, unit valueobject.UnitType) (*ScanResult, error) {
	balances, err := ledger.GetBalances(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	availability := inventory.Summarize(product.ID, balances)
	per, err := product.Factors.PiecesPer(unit)
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		Barcode:            product.Barcodes.For(unit),
		Product:            toScannedProduct(product),
		DetectedUnitType:   unit,
		PiecesPerUnit:      per,
		UnitPrice:          product.UnitPrice(unit, product.Factors),
		AvailableUnits:     product.Factors.FromPieces(unit, availability.TotalPieces),
		TotalPiecesInStock: availability.TotalPieces,
		StorageLocations:   availability.LocationCount,
	}, nil
}
