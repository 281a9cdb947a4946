package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError(CodeInvalidState, "cannot add items to a completed stock-in")

	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("add item: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInvalidState))
}

func TestDomainError_WithDetail(t *testing.T) {
	base := ErrAmbiguousBarcode
	detailed := base.WithDetail("barcode", "4006381333931")

	assert.Nil(t, base.Details, "sentinel must not be mutated")
	assert.Equal(t, "4006381333931", detailed.Details["barcode"])
	assert.True(t, errors.Is(detailed, ErrAmbiguousBarcode))

	again := detailed.WithDetail("matches", 2)
	assert.Len(t, again.Details, 2)
	assert.Len(t, detailed.Details, 1)
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("location_id", "storage location is required")

	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, "location_id", domainErr.Details["field"])
	assert.Equal(t, "storage location is required", err.Error())
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500, OrderDir: "sideways"}.Normalize()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, 0, f.Offset())

	f.Page = 3
	assert.Equal(t, 200, f.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))
}
