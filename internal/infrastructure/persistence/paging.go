package persistence

import (
	"strings"

	"github.com/stockflow/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns is the set of columns a listing may be ordered by. Anything
// else falls back to created_at, so user input never reaches ORDER BY.
type sortColumns map[string]struct{}

func newSortColumns(extra ...string) sortColumns {
	cols := sortColumns{"id": {}, "created_at": {}, "updated_at": {}}
	for _, c := range extra {
		cols[c] = struct{}{}
	}
	return cols
}

func (c sortColumns) resolve(requested string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if _, ok := c[requested]; ok {
		return requested
	}
	return "created_at"
}

var (
	productSortColumns  = newSortColumns("name", "part_number", "base_price")
	locationSortColumns = newSortColumns("warehouse", "container", "rack")
	stockInSortColumns  = newSortColumns("reference", "status", "supplier_name", "completed_at")
	stockOutSortColumns = newSortColumns("reference", "status", "department", "requestor", "approved_at", "completed_at")
)

// sortDescending reads an order direction; only "asc" sorts ascending
func sortDescending(dir string) bool {
	return !strings.EqualFold(strings.TrimSpace(dir), "asc")
}

// applyPaging orders by an allowed column and applies limit/offset
func applyPaging(query *gorm.DB, filter shared.Filter, cols sortColumns) *gorm.DB {
	desc := sortDescending(filter.OrderDir)
	filter = filter.Normalize()
	return query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: cols.resolve(filter.OrderBy)}, Desc: desc}).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// likePattern builds a case-insensitive LIKE pattern for search terms.
// LOWER(...) LIKE keeps the query portable between postgres and sqlite.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
