package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// TransactionItem is one scanned line of a stock-in or stock-out header.
// Quantity is expressed in UnitType, except for flexible lines where it is
// the exact piece count.
type TransactionItem struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Barcode         string
	UnitType        valueobject.UnitType
	Quantity        int64
	TotalPieces     int64
	Factors         valueobject.ConversionFactors
	OverrideApplied bool
	Flexible        bool
	PricePerUnit    decimal.Decimal
	TotalAmount     decimal.Decimal
	LocationID      *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemInput carries everything needed to append a line
type ItemInput struct {
	ProductID       uuid.UUID
	ProductName     string
	Barcode         string
	UnitType        valueobject.UnitType
	Quantity        int64
	TotalPieces     int64
	Factors         valueobject.ConversionFactors
	OverrideApplied bool
	Flexible        bool
	PricePerUnit    decimal.Decimal
	LocationID      *uuid.UUID
}

func newTransactionItem(in ItemInput) (*TransactionItem, error) {
	if in.ProductID == uuid.Nil {
		return nil, shared.NewValidationError("product_id", "product is required")
	}
	if !in.UnitType.IsValid() {
		return nil, shared.NewValidationError("unit_type", "unit type must be piece, pack or box")
	}
	if in.Quantity <= 0 || in.TotalPieces <= 0 {
		return nil, shared.ErrInvalidConversion.WithDetail("quantity", in.Quantity)
	}
	if in.PricePerUnit.IsNegative() {
		return nil, shared.NewValidationError("price_per_unit", "price per unit cannot be negative")
	}

	now := time.Now()
	item := &TransactionItem{
		ID:              uuid.New(),
		ProductID:       in.ProductID,
		ProductName:     in.ProductName,
		Barcode:         in.Barcode,
		UnitType:        in.UnitType,
		Quantity:        in.Quantity,
		TotalPieces:     in.TotalPieces,
		Factors:         in.Factors,
		OverrideApplied: in.OverrideApplied,
		Flexible:        in.Flexible,
		PricePerUnit:    in.PricePerUnit,
		LocationID:      in.LocationID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	item.TotalAmount = item.PricePerUnit.Mul(decimal.NewFromInt(item.Quantity))
	return item, nil
}

// ItemChange is a partial edit of a pending line; nil fields are unchanged
type ItemChange struct {
	Quantity     *int64
	PricePerUnit *decimal.Decimal
	LocationID   *uuid.UUID
}

func (i *TransactionItem) apply(c ItemChange) error {
	quantity := i.Quantity
	pieces := i.TotalPieces
	if c.Quantity != nil {
		quantity = *c.Quantity
		if i.Flexible {
			if quantity <= 0 {
				return shared.ErrInvalidConversion.WithDetail("quantity", quantity)
			}
			pieces = quantity
		} else {
			p, err := i.Factors.ToPieces(i.UnitType, quantity)
			if err != nil {
				return err
			}
			pieces = p
		}
	}
	price := i.PricePerUnit
	if c.PricePerUnit != nil {
		if c.PricePerUnit.IsNegative() {
			return shared.NewValidationError("price_per_unit", "price per unit cannot be negative")
		}
		price = *c.PricePerUnit
	}

	i.Quantity = quantity
	i.TotalPieces = pieces
	i.PricePerUnit = price
	i.TotalAmount = price.Mul(decimal.NewFromInt(quantity))
	if c.LocationID != nil {
		loc := *c.LocationID
		i.LocationID = &loc
	}
	i.UpdatedAt = time.Now()
	return nil
}

// ItemList is the ordered line collection shared by both header types.
// It never checks header status; the owning aggregate does.
type ItemList struct {
	Items []TransactionItem
}

func (l *ItemList) add(in ItemInput) (*TransactionItem, error) {
	item, err := newTransactionItem(in)
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, *item)
	return &l.Items[len(l.Items)-1], nil
}

func (l *ItemList) index(itemID uuid.UUID) int {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Item returns a copy of the line with the given id
func (l *ItemList) Item(itemID uuid.UUID) (TransactionItem, bool) {
	idx := l.index(itemID)
	if idx < 0 {
		return TransactionItem{}, false
	}
	return l.Items[idx], true
}

func (l *ItemList) update(itemID uuid.UUID, c ItemChange) (*TransactionItem, error) {
	idx := l.index(itemID)
	if idx < 0 {
		return nil, shared.ErrNotFound.WithDetail("item_id", itemID.String())
	}
	candidate := l.Items[idx]
	if err := candidate.apply(c); err != nil {
		return nil, err
	}
	l.Items[idx] = candidate
	return &l.Items[idx], nil
}

func (l *ItemList) remove(itemID uuid.UUID) error {
	idx := l.index(itemID)
	if idx < 0 {
		return shared.ErrNotFound.WithDetail("item_id", itemID.String())
	}
	l.Items = append(l.Items[:idx], l.Items[idx+1:]...)
	return nil
}

// ItemCount returns the number of lines
func (l *ItemList) ItemCount() int { return len(l.Items) }

// TotalPieces sums the piece totals of all lines
func (l *ItemList) TotalPieces() int64 {
	var total int64
	for _, it := range l.Items {
		total += it.TotalPieces
	}
	return total
}

// TotalAmount sums the amounts of all lines
func (l *ItemList) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.Items {
		total = total.Add(it.TotalAmount)
	}
	return total
}

// PiecesByProduct aggregates piece totals per product, in first-seen order
func (l *ItemList) PiecesByProduct() ([]uuid.UUID, map[uuid.UUID]int64) {
	order := make([]uuid.UUID, 0, len(l.Items))
	sums := make(map[uuid.UUID]int64, len(l.Items))
	for _, it := range l.Items {
		if _, ok := sums[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		sums[it.ProductID] += it.TotalPieces
	}
	return order, sums
}
