package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/service"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// Options are the stock workflow switches read from configuration
type Options struct {
	// AllowFlexible enables exact-piece withdrawals from packs and boxes
	AllowFlexible bool
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{AllowFlexible: true}
}

func (o Options) checkMode(mode inventory.ValidationMode) error {
	if mode == inventory.ModeFlexible && !o.AllowFlexible {
		return shared.NewValidationError("flexible", "flexible withdrawals are disabled")
	}
	return nil
}

// Calculator exposes the pure conversion and sufficiency checks
type Calculator struct {
	converter   *service.UnitConversionService
	productRepo catalog.ProductRepository
	ledger      inventory.StockLedger
	opts        Options
}

// NewCalculator creates a new Calculator
func NewCalculator(productRepo catalog.ProductRepository, ledger inventory.StockLedger, opts Options) *Calculator {
	return &Calculator{
		converter:   service.NewUnitConversionService(),
		productRepo: productRepo,
		ledger:      ledger,
		opts:        opts,
	}
}

// ComputeConversion converts req.Quantity units into pieces
func (c *Calculator) ComputeConversion(ctx context.Context, req ConversionRequest) (*ConversionResponse, error) {
	unit, err := valueobject.ParseUnitType(req.Unit)
	if err != nil {
		return nil, err
	}

	factors := valueobject.ConversionFactors{PiecesPerPack: req.PiecesPerPack, PacksPerBox: req.PacksPerBox}
	if req.ProductID != nil {
		product, err := c.productRepo.FindByID(ctx, *req.ProductID)
		if err != nil {
			return nil, err
		}
		factors = product.Factors
	}

	res, err := c.converter.ToPiecesWithOverride(unit, req.Quantity, factors, req.Override)
	if err != nil {
		return nil, err
	}
	return &ConversionResponse{
		Unit:            res.Unit,
		Quantity:        res.Quantity,
		PiecesPerPack:   res.Factors.PiecesPerPack,
		PacksPerBox:     res.Factors.PacksPerBox,
		PiecesPerUnit:   res.PiecesPerUnit,
		TotalPieces:     res.TotalPieces,
		OverrideApplied: res.OverrideApplied,
	}, nil
}

// ValidateSufficiency checks a withdrawal against available pieces. The
// result is advisory; the ledger re-checks when it commits.
func (c *Calculator) ValidateSufficiency(ctx context.Context, req SufficiencyRequest) (*SufficiencyResponse, error) {
	mode := inventory.ValidationMode(req.Mode)
	if mode == "" {
		mode = inventory.ModeStandard
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("mode", "mode must be standard or flexible")
	}
	if err := c.opts.checkMode(mode); err != nil {
		return nil, err
	}

	requested := req.RequestedPieces
	if mode == inventory.ModeFlexible {
		if req.Unit == string(valueobject.UnitPiece) {
			return nil, shared.NewValidationError("mode", "flexible mode applies to pack or box scans only")
		}
		requested = req.ActualPieces
	}

	var available int64
	switch {
	case req.AvailablePieces != nil:
		available = *req.AvailablePieces
	case req.ProductID != nil:
		availability, err := c.ledger.GetAvailablePieces(ctx, *req.ProductID)
		if err != nil {
			return nil, err
		}
		available = availability.TotalPieces
	default:
		return nil, shared.NewValidationError("available_pieces", "available_pieces or product_id is required")
	}

	var productID uuid.UUID
	if req.ProductID != nil {
		productID = *req.ProductID
	}
	acc, err := inventory.ValidateSufficiency(productID, requested, available)
	if err != nil {
		return nil, err
	}
	return &SufficiencyResponse{
		Mode:            mode,
		AvailablePieces: max(available, 0),
		AcceptedPieces:  acc.AcceptedPieces,
		RemainingAfter:  acc.RemainingAfter,
	}, nil
}
