package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
)

// StockInService runs the goods-receipt workflow
type StockInService struct {
	stockInRepo    inventory.StockInRepository
	productRepo    catalog.ProductRepository
	locationRepo   inventory.LocationRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockInService creates a new StockInService
func NewStockInService(
	stockInRepo inventory.StockInRepository,
	productRepo catalog.ProductRepository,
	locationRepo inventory.LocationRepository,
	txScope TransactionScope,
) *StockInService {
	return &StockInService{
		stockInRepo:  stockInRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		txScope:      txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockInService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *StockInService) publishDomainEvents(ctx context.Context, si *inventory.StockIn) {
	publishEvents(ctx, s.eventPublisher, &si.BaseAggregateRoot)
}

// Create opens an empty pending stock-in
func (s *StockInService) Create(ctx context.Context, req CreateStockInRequest) (*StockInResponse, error) {
	si := inventory.NewStockIn(req.SupplierName, req.Notes)
	if err := s.stockInRepo.Save(ctx, si); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, si)

	resp := ToStockInResponse(si, true)
	return &resp, nil
}

// GetByID retrieves a stock-in with its lines
func (s *StockInService) GetByID(ctx context.Context, id uuid.UUID) (*StockInResponse, error) {
	si, err := s.stockInRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStockInResponse(si, true)
	return &resp, nil
}

// List retrieves a page of stock-ins, optionally filtered by status
func (s *StockInService) List(ctx context.Context, filter shared.Filter, status string) ([]StockInResponse, int64, error) {
	st := inventory.StockInStatus(status)
	if status != "" && !st.IsValid() {
		return nil, 0, shared.NewValidationError("status", "status must be pending, completed or rejected")
	}
	filter = filter.Normalize()
	list, err := s.stockInRepo.FindAll(ctx, filter, st)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stockInRepo.Count(ctx, filter, st)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StockInResponse, len(list))
	for i, si := range list {
		out[i] = ToStockInResponse(si, false)
	}
	return out, total, nil
}

// AddItem resolves the scanned barcode and appends a line. Stock-in always
// converts with the product's stored factors.
func (s *StockInService) AddItem(ctx context.Context, id uuid.UUID, req AddStockInItemRequest) (*StockInResponse, error) {
	si, err := s.stockInRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := si.EnsureItemsEditable(); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, req.LocationID); err != nil {
		return nil, err
	}

	product, unit, err := resolveProduct(ctx, s.productRepo, req.Barcode)
	if err != nil {
		return nil, err
	}
	pieces, err := product.Factors.ToPieces(unit, req.Quantity)
	if err != nil {
		return nil, err
	}
	price := product.UnitPrice(unit, product.Factors)
	if req.PricePerUnit != nil {
		price = *req.PricePerUnit
	}

	if _, err := si.AddItem(inventory.ItemInput{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Barcode:      product.Barcodes.For(unit),
		UnitType:     unit,
		Quantity:     req.Quantity,
		TotalPieces:  pieces,
		Factors:      product.Factors,
		PricePerUnit: price,
		LocationID:   req.LocationID,
	}); err != nil {
		return nil, err
	}

	if err := s.stockInRepo.Save(ctx, si); err != nil {
		return nil, err
	}
	resp := ToStockInResponse(si, true)
	return &resp, nil
}

// UpdateItem edits the quantity, price or location of a pending line
func (s *StockInService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req UpdateItemRequest) (*StockInResponse, error) {
	si, err := s.stockInRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := si.EnsureItemsEditable(); err != nil {
		return nil, err
	}
	if req.LocationID != nil {
		if err := s.checkLocation(ctx, req.LocationID); err != nil {
			return nil, err
		}
	}
	if _, err := si.UpdateItem(itemID, req.change()); err != nil {
		return nil, err
	}
	if err := s.stockInRepo.Save(ctx, si); err != nil {
		return nil, err
	}
	resp := ToStockInResponse(si, true)
	return &resp, nil
}

// RemoveItem deletes a pending line
func (s *StockInService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*StockInResponse, error) {
	si, err := s.stockInRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := si.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.stockInRepo.Save(ctx, si); err != nil {
		return nil, err
	}
	resp := ToStockInResponse(si, true)
	return &resp, nil
}

// Complete finalizes the receipt and adds every line's pieces to its
// location, all in one transaction.
func (s *StockInService) Complete(ctx context.Context, id uuid.UUID) (*StockInResponse, error) {
	var completed *inventory.StockIn
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		si, err := repos.StockInRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := si.Complete(); err != nil {
			return err
		}

		ref := inventory.Reference{Type: inventory.ReferenceStockIn, ID: si.ID.String()}
		for _, item := range si.Items {
			if _, err := repos.Ledger().CommitAddition(ctx, inventory.AdditionRequest{
				ProductID:  item.ProductID,
				LocationID: *item.LocationID,
				Pieces:     item.TotalPieces,
				Reference:  ref,
			}); err != nil {
				return err
			}
		}

		if err := repos.StockInRepo().Save(ctx, si); err != nil {
			return err
		}
		completed = si
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, completed)

	resp := ToStockInResponse(completed, true)
	return &resp, nil
}

// Reject discards the receipt; stock is not touched
func (s *StockInService) Reject(ctx context.Context, id uuid.UUID, reason string) (*StockInResponse, error) {
	si, err := s.stockInRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := si.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.stockInRepo.Save(ctx, si); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, si)

	resp := ToStockInResponse(si, true)
	return &resp, nil
}

func (s *StockInService) checkLocation(ctx context.Context, locationID *uuid.UUID) error {
	if locationID == nil || *locationID == uuid.Nil {
		return shared.NewValidationError("location_id", "a storage location is required for stock-in items")
	}
	if _, err := s.locationRepo.FindByID(ctx, *locationID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("location_id", "storage location does not exist")
		}
		return err
	}
	return nil
}

// publishEvents publishes and clears an aggregate's pending events.
// Errors are logged by the event bus, not propagated.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, agg *shared.BaseAggregateRoot) {
	if publisher == nil {
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, events...)
	agg.ClearDomainEvents()
}
