package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// LocationService manages storage locations and per-location stock views
type LocationService struct {
	locationRepo inventory.LocationRepository
	productRepo  catalog.ProductRepository
	ledger       inventory.StockLedger
}

// NewLocationService creates a new LocationService
func NewLocationService(
	locationRepo inventory.LocationRepository,
	productRepo catalog.ProductRepository,
	ledger inventory.StockLedger,
) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		productRepo:  productRepo,
		ledger:       ledger,
	}
}

// Create creates a storage location; the warehouse/container/rack path is unique
func (s *LocationService) Create(ctx context.Context, req CreateLocationRequest) (*LocationResponse, error) {
	location, err := inventory.NewStorageLocation(req.Warehouse, req.Container, req.Rack)
	if err != nil {
		return nil, err
	}

	existing, err := s.locationRepo.FindByPath(ctx, location.Warehouse, location.Container, location.Rack)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists.
			WithDetail("location_id", existing.ID.String()).
			WithDetail("label", existing.Label())
	}

	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	resp := toLocationResponse(location)
	return &resp, nil
}

// List retrieves a page of storage locations
func (s *LocationService) List(ctx context.Context, filter shared.Filter) ([]LocationResponse, int64, error) {
	filter = filter.Normalize()
	locations, err := s.locationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.locationRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LocationResponse, len(locations))
	for i, l := range locations {
		out[i] = toLocationResponse(l)
	}
	return out, total, nil
}

// GetProductStock lists a product's balances per location, skipping
// empty locations.
func (s *LocationService) GetProductStock(ctx context.Context, productID uuid.UUID) (*ProductStockResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	balances, err := s.ledger.GetBalances(ctx, productID)
	if err != nil {
		return nil, err
	}
	availability := inventory.Summarize(productID, balances)

	resp := &ProductStockResponse{
		ProductID:      product.ID,
		ProductName:    product.Name,
		TotalPieces:    availability.TotalPieces,
		LocationCount:  availability.LocationCount,
		AvailableBoxes: product.Factors.FromPieces(valueobject.UnitBox, availability.TotalPieces),
		AvailablePacks: product.Factors.FromPieces(valueobject.UnitPack, availability.TotalPieces),
		Balances:       make([]LocationBalance, 0, availability.LocationCount),
	}
	for _, b := range balances {
		if b.Pieces <= 0 {
			continue
		}
		label := b.LocationID.String()
		if loc, err := s.locationRepo.FindByID(ctx, b.LocationID); err == nil {
			label = loc.Label()
		}
		resp.Balances = append(resp.Balances, LocationBalance{
			LocationID:    b.LocationID,
			LocationLabel: label,
			Pieces:        b.Pieces,
			UpdatedAt:     b.UpdatedAt,
		})
	}
	return resp, nil
}
