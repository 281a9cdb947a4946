package catalog

import (
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// AggregateTypeProduct is the aggregate type for product events
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductRegistered       = "ProductRegistered"
	EventTypeProductPackagingChanged = "ProductPackagingChanged"
	EventTypeProductBarcodesChanged  = "ProductBarcodesChanged"
)

// ProductRegisteredEvent is published when a product enters the catalog
type ProductRegisteredEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID                     `json:"product_id"`
	Name      string                        `json:"name"`
	Barcodes  Barcodes                      `json:"barcodes"`
	Factors   valueobject.ConversionFactors `json:"factors"`
}

// NewProductRegisteredEvent creates a new ProductRegisteredEvent
func NewProductRegisteredEvent(p *Product) *ProductRegisteredEvent {
	return &ProductRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductRegistered, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		Barcodes:        p.Barcodes,
		Factors:         p.Factors,
	}
}

// ProductPackagingChangedEvent is published when conversion factors change
type ProductPackagingChangedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID                     `json:"product_id"`
	OldFactors valueobject.ConversionFactors `json:"old_factors"`
	NewFactors valueobject.ConversionFactors `json:"new_factors"`
}

// NewProductPackagingChangedEvent creates a new ProductPackagingChangedEvent
func NewProductPackagingChangedEvent(p *Product, old valueobject.ConversionFactors) *ProductPackagingChangedEvent {
	return &ProductPackagingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPackagingChanged, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		OldFactors:      old,
		NewFactors:      p.Factors,
	}
}

// ProductBarcodesChangedEvent is published when the barcode set changes
type ProductBarcodesChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Barcodes  Barcodes  `json:"barcodes"`
}

// NewProductBarcodesChangedEvent creates a new ProductBarcodesChangedEvent
func NewProductBarcodesChangedEvent(p *Product) *ProductBarcodesChangedEvent {
	return &ProductBarcodesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductBarcodesChanged, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Barcodes:        p.Barcodes,
	}
}
