package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
)

// StockInModel is the persistence model for the StockIn aggregate root.
type StockInModel struct {
	VersionedColumns
	Reference    string             `gorm:"type:varchar(40);not null;uniqueIndex"`
	SupplierName string             `gorm:"type:varchar(200)"`
	Notes        string             `gorm:"type:text"`
	Status       string             `gorm:"type:varchar(20);not null;index"`
	CompletedAt  *time.Time         `gorm:"type:timestamp"`
	RejectedAt   *time.Time         `gorm:"type:timestamp"`
	RejectReason string             `gorm:"type:varchar(500)"`
	Items        []StockInItemModel `gorm:"foreignKey:StockInID;references:ID"`
}

// TableName returns the table name for GORM
func (StockInModel) TableName() string {
	return "stock_ins"
}

// StockInItemModel is one stock-in line
type StockInItemModel struct {
	TransactionItemModel
	StockInID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (StockInItemModel) TableName() string {
	return "stock_in_items"
}

// ToDomain converts the persistence model to a domain StockIn entity.
func (m *StockInModel) ToDomain() *inventory.StockIn {
	si := &inventory.StockIn{
		BaseAggregateRoot: m.aggregateRoot(),
		Reference:         m.Reference,
		SupplierName:      m.SupplierName,
		Notes:             m.Notes,
		Status:            inventory.StockInStatus(m.Status),
		CompletedAt:       m.CompletedAt,
		RejectedAt:        m.RejectedAt,
		RejectReason:      m.RejectReason,
	}
	si.Items = make([]inventory.TransactionItem, len(m.Items))
	for i := range m.Items {
		si.Items[i] = m.Items[i].ToDomain()
	}
	return si
}

// StockInModelFromDomain creates a new persistence model from a domain StockIn entity.
func StockInModelFromDomain(si *inventory.StockIn) *StockInModel {
	m := &StockInModel{
		Reference:    si.Reference,
		SupplierName: si.SupplierName,
		Notes:        si.Notes,
		Status:       string(si.Status),
		CompletedAt:  si.CompletedAt,
		RejectedAt:   si.RejectedAt,
		RejectReason: si.RejectReason,
		Items:        make([]StockInItemModel, len(si.Items)),
	}
	m.VersionedColumns = versionedColumns(si.BaseAggregateRoot)
	for i, item := range si.Items {
		m.Items[i].FromDomain(item)
		m.Items[i].StockInID = si.ID
	}
	return m
}

// StockOutModel is the persistence model for the StockOut aggregate root.
type StockOutModel struct {
	VersionedColumns
	Reference    string              `gorm:"type:varchar(40);not null;uniqueIndex"`
	Department   string              `gorm:"type:varchar(100)"`
	Requestor    string              `gorm:"type:varchar(100);not null"`
	Notes        string              `gorm:"type:text"`
	Status       string              `gorm:"type:varchar(20);not null;index"`
	ApprovedAt   *time.Time          `gorm:"type:timestamp"`
	CompletedAt  *time.Time          `gorm:"type:timestamp"`
	RejectedAt   *time.Time          `gorm:"type:timestamp"`
	RejectReason string              `gorm:"type:varchar(500)"`
	Items        []StockOutItemModel `gorm:"foreignKey:StockOutID;references:ID"`
}

// TableName returns the table name for GORM
func (StockOutModel) TableName() string {
	return "stock_outs"
}

// StockOutItemModel is one stock-out line
type StockOutItemModel struct {
	TransactionItemModel
	StockOutID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (StockOutItemModel) TableName() string {
	return "stock_out_items"
}

// ToDomain converts the persistence model to a domain StockOut entity.
func (m *StockOutModel) ToDomain() *inventory.StockOut {
	so := &inventory.StockOut{
		BaseAggregateRoot: m.aggregateRoot(),
		Reference:         m.Reference,
		Department:        m.Department,
		Requestor:         m.Requestor,
		Notes:             m.Notes,
		Status:            inventory.StockOutStatus(m.Status),
		ApprovedAt:        m.ApprovedAt,
		CompletedAt:       m.CompletedAt,
		RejectedAt:        m.RejectedAt,
		RejectReason:      m.RejectReason,
	}
	so.Items = make([]inventory.TransactionItem, len(m.Items))
	for i := range m.Items {
		so.Items[i] = m.Items[i].ToDomain()
	}
	return so
}

// StockOutModelFromDomain creates a new persistence model from a domain StockOut entity.
func StockOutModelFromDomain(so *inventory.StockOut) *StockOutModel {
	m := &StockOutModel{
		Reference:    so.Reference,
		Department:   so.Department,
		Requestor:    so.Requestor,
		Notes:        so.Notes,
		Status:       string(so.Status),
		ApprovedAt:   so.ApprovedAt,
		CompletedAt:  so.CompletedAt,
		RejectedAt:   so.RejectedAt,
		RejectReason: so.RejectReason,
		Items:        make([]StockOutItemModel, len(so.Items)),
	}
	m.VersionedColumns = versionedColumns(so.BaseAggregateRoot)
	for i, item := range so.Items {
		m.Items[i].FromDomain(item)
		m.Items[i].StockOutID = so.ID
	}
	return m
}

// All lists every model, in dependency order, for AutoMigrate in tests
// and the sqlite development database.
func All() []any {
	return []any{
		&ProductModel{},
		&StorageLocationModel{},
		&StockBalanceModel{},
		&StockMovementModel{},
		&ScanRecordModel{},
		&StockInModel{},
		&StockInItemModel{},
		&StockOutModel{},
		&StockOutItemModel{},
	}
}
