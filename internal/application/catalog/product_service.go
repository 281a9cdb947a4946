package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// ProductService handles product registration and packaging maintenance
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProductService) publishDomainEvents(ctx context.Context, p *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}

// RegisterProduct creates a product. A barcode that already belongs to
// another product yields Kind=duplicate and nothing is stored, unless force
// is set, in which case the product is stored and the conflicts reported.
func (s *ProductService) RegisterProduct(ctx context.Context, req RegisterProductRequest, force bool) (*RegistrationResult, error) {
	factors, err := valueobject.NewConversionFactors(req.PiecesPerPack, req.PacksPerBox)
	if err != nil {
		return nil, err
	}
	price := decimal.Zero
	if req.BasePrice != nil {
		price = *req.BasePrice
	}

	product, err := catalog.NewProduct(req.Name, req.PartNumber, req.Barcodes(), factors, price)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.findConflicts(ctx, product.Barcodes, product.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 && !force {
		return &RegistrationResult{Kind: RegistrationDuplicate, Conflicts: conflicts}, nil
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product)
	return &RegistrationResult{
		Kind:      RegistrationNew,
		Product:   &resp,
		Conflicts: conflicts,
		Forced:    len(conflicts) > 0,
	}, nil
}

func (s *ProductService) findConflicts(ctx context.Context, barcodes catalog.Barcodes, self uuid.UUID) ([]catalog.BarcodeConflict, error) {
	others, err := s.productRepo.FindByAnyBarcode(ctx, barcodes.Codes())
	if err != nil {
		return nil, err
	}
	return catalog.FindConflicts(barcodes, self, others), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves a page of products; Search matches name, part number
// and barcodes.
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	filter = filter.Normalize()
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// UpdatePackaging replaces a product's conversion factors. Lines already
// on transaction headers keep the factors they were scanned with.
func (s *ProductService) UpdatePackaging(ctx context.Context, id uuid.UUID, req UpdatePackagingRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	factors, err := valueobject.NewConversionFactors(req.PiecesPerPack, req.PacksPerBox)
	if err != nil {
		return nil, err
	}
	if err := product.UpdatePackaging(factors); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdatePrice sets a product's piece price. Existing transaction lines keep
// the price they were recorded with.
func (s *ProductService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	if req.BasePrice == nil {
		return nil, shared.NewValidationError("base_price", "base price is required")
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetBasePrice(*req.BasePrice); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateBarcodes replaces a product's barcodes with the same duplicate
// semantics as RegisterProduct.
func (s *ProductService) UpdateBarcodes(ctx context.Context, id uuid.UUID, req UpdateBarcodesRequest, force bool) (*RegistrationResult, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	barcodes := req.Barcodes().Normalize()
	if err := product.UpdateBarcodes(barcodes); err != nil {
		return nil, err
	}

	conflicts, err := s.findConflicts(ctx, product.Barcodes, product.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 && !force {
		return &RegistrationResult{Kind: RegistrationDuplicate, Conflicts: conflicts}, nil
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product)
	return &RegistrationResult{
		Kind:      RegistrationNew,
		Product:   &resp,
		Conflicts: conflicts,
		Forced:    len(conflicts) > 0,
	}, nil
}
