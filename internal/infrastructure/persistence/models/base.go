package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// EntityColumns are the identity and timestamp columns every table carries
type EntityColumns struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func entityColumns(e shared.BaseEntity) EntityColumns {
	return EntityColumns{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

func (c EntityColumns) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// VersionedColumns add the optimistic-lock version used by aggregate roots.
// Repositories update with WHERE version = ? and bump it on success.
type VersionedColumns struct {
	EntityColumns
	Version int `gorm:"not null;default:1"`
}

func versionedColumns(a shared.BaseAggregateRoot) VersionedColumns {
	return VersionedColumns{EntityColumns: entityColumns(a.BaseEntity), Version: a.Version}
}

func (c VersionedColumns) aggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: c.entity(), Version: c.Version}
}
