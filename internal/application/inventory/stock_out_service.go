package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// StockOutService runs the goods-issue workflow. Sufficiency is checked
// when lines are scanned and again on approval; both checks are advisory
// and the ledger re-verifies under lock on completion.
type StockOutService struct {
	stockOutRepo   inventory.StockOutRepository
	productRepo    catalog.ProductRepository
	ledger         inventory.StockLedger
	txScope        TransactionScope
	opts           Options
	eventPublisher shared.EventPublisher
}

// NewStockOutService creates a new StockOutService
func NewStockOutService(
	stockOutRepo inventory.StockOutRepository,
	productRepo catalog.ProductRepository,
	ledger inventory.StockLedger,
	txScope TransactionScope,
	opts Options,
) *StockOutService {
	return &StockOutService{
		stockOutRepo: stockOutRepo,
		productRepo:  productRepo,
		ledger:       ledger,
		txScope:      txScope,
		opts:         opts,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockOutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *StockOutService) publishDomainEvents(ctx context.Context, so *inventory.StockOut) {
	publishEvents(ctx, s.eventPublisher, &so.BaseAggregateRoot)
}

// Create opens an empty pending stock-out
func (s *StockOutService) Create(ctx context.Context, req CreateStockOutRequest) (*StockOutResponse, error) {
	so, err := inventory.NewStockOut(req.Department, req.Requestor, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.stockOutRepo.Save(ctx, so); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, so)

	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

// GetByID retrieves a stock-out with its lines
func (s *StockOutService) GetByID(ctx context.Context, id uuid.UUID) (*StockOutResponse, error) {
	so, err := s.stockOutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

// List retrieves a page of stock-outs, optionally filtered by status
func (s *StockOutService) List(ctx context.Context, filter shared.Filter, status string) ([]StockOutResponse, int64, error) {
	st := inventory.StockOutStatus(status)
	if status != "" && !st.IsValid() {
		return nil, 0, shared.NewValidationError("status", "status must be pending, approved, completed or rejected")
	}
	filter = filter.Normalize()
	list, err := s.stockOutRepo.FindAll(ctx, filter, st)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stockOutRepo.Count(ctx, filter, st)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StockOutResponse, len(list))
	for i, so := range list {
		out[i] = ToStockOutResponse(so, false)
	}
	return out, total, nil
}

// AddItem resolves the barcode, converts the withdrawal into pieces and
// appends the line if the product's pending total stays within stock.
// An unknown barcode is a blocking NotFound here.
func (s *StockOutService) AddItem(ctx context.Context, id uuid.UUID, req AddStockOutItemRequest) (*StockOutResponse, error) {
	so, err := s.stockOutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := so.EnsureItemsEditable(); err != nil {
		return nil, err
	}

	product, unit, err := resolveProduct(ctx, s.productRepo, req.Barcode)
	if err != nil {
		return nil, err
	}
	withdrawal := req.withdrawal(unit)
	if err := s.opts.checkMode(withdrawal.Mode); err != nil {
		return nil, err
	}
	wp, err := withdrawal.Resolve(product.Factors)
	if err != nil {
		return nil, err
	}

	_, pending := so.PiecesByProduct()
	if err := s.checkAvailable(ctx, product.ID, pending[product.ID]+wp.Pieces); err != nil {
		return nil, err
	}

	if _, err := so.AddItem(inventory.ItemInput{
		ProductID:       product.ID,
		ProductName:     product.Name,
		Barcode:         product.Barcodes.For(unit),
		UnitType:        unit,
		Quantity:        wp.Quantity,
		TotalPieces:     wp.Pieces,
		Factors:         wp.Factors,
		OverrideApplied: wp.OverrideApplied,
		Flexible:        wp.Flexible,
		PricePerUnit:    linePrice(product, unit, wp, req),
		LocationID:      req.LocationID,
	}); err != nil {
		return nil, err
	}

	if err := s.stockOutRepo.Save(ctx, so); err != nil {
		return nil, err
	}
	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

// linePrice defaults to the product's piece price scaled to the unit;
// flexible lines are priced per piece.
func linePrice(product *catalog.Product, unit valueobject.UnitType, wp inventory.WithdrawalPieces, req AddStockOutItemRequest) decimal.Decimal {
	if req.PricePerUnit != nil {
		return *req.PricePerUnit
	}
	if wp.Flexible {
		return product.BasePrice
	}
	return product.UnitPrice(unit, wp.Factors)
}

// UpdateItem edits a pending line and re-checks the product's total
func (s *StockOutService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req UpdateItemRequest) (*StockOutResponse, error) {
	so, err := s.stockOutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := so.EnsureItemsEditable(); err != nil {
		return nil, err
	}
	item, err := so.UpdateItem(itemID, req.change())
	if err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		_, pending := so.PiecesByProduct()
		if err := s.checkAvailable(ctx, item.ProductID, pending[item.ProductID]); err != nil {
			return nil, err
		}
	}
	if err := s.stockOutRepo.Save(ctx, so); err != nil {
		return nil, err
	}
	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

// RemoveItem deletes a pending line
func (s *StockOutService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*StockOutResponse, error) {
	so, err := s.stockOutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := so.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.stockOutRepo.Save(ctx, so); err != nil {
		return nil, err
	}
	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

// Approve re-validates every product's total against current stock and
// freezes the lines.
func (s *StockOutService) Approve(ctx context.Context, id uuid.UUID) (*StockOutResponse, error) {
	so, err := s.stockOutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !so.Status.CanTransitionTo(inventory.StockOutStatusApproved) {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "cannot approve a "+so.Status.String()+" stock-out")
	}
	order, pending := so.PiecesByProduct()
	for _, productID := range order {
		if err := s.checkAvailable(ctx, productID, pending[productID]); err != nil {
			return nil, err
		}
	}
	if err := so.Approve(); err != nil {
		return nil, err
	}
	if err := s.stockOutRepo.Save(ctx, so); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, so)

	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

// Complete issues the goods: every line is deducted from the ledger in one
// transaction, and any shortfall rolls the whole header back.
func (s *StockOutService) Complete(ctx context.Context, id uuid.UUID) (*StockOutResponse, error) {
	var completed *inventory.StockOut
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		so, err := repos.StockOutRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := so.Complete(); err != nil {
			return err
		}

		ref := inventory.Reference{Type: inventory.ReferenceStockOut, ID: so.ID.String()}
		for _, item := range so.Items {
			if _, err := repos.Ledger().CommitDeduction(ctx, inventory.DeductionRequest{
				ProductID:  item.ProductID,
				Pieces:     item.TotalPieces,
				LocationID: item.LocationID,
				Reference:  ref,
			}); err != nil {
				return err
			}
		}

		if err := repos.StockOutRepo().Save(ctx, so); err != nil {
			return err
		}
		completed = so
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, completed)

	resp := ToStockOutResponse(completed, true)
	return &resp, nil
}

// Reject cancels a pending or approved request
func (s *StockOutService) Reject(ctx context.Context, id uuid.UUID, reason string) (*StockOutResponse, error) {
	so, err := s.stockOutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := so.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.stockOutRepo.Save(ctx, so); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, so)

	resp := ToStockOutResponse(so, true)
	return &resp, nil
}

func (s *StockOutService) checkAvailable(ctx context.Context, productID uuid.UUID, requested int64) error {
	available, err := s.ledger.GetAvailablePieces(ctx, productID)
	if err != nil {
		return err
	}
	_, err = inventory.ValidateSufficiency(productID, requested, available.TotalPieces)
	return err
}
