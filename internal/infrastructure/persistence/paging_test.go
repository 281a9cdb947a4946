package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestSortColumns_Resolve(t *testing.T) {
	cases := map[string]string{
		"":                         "created_at",
		"name":                     "name",
		" Name ":                   "name",
		"updated_at":               "updated_at",
		"password":                 "created_at",
		"name; DROP TABLE users;--": "created_at",
	}
	for in, want := range cases {
		assert.Equal(t, want, productSortColumns.resolve(in), "resolve(%q)", in)
	}

	assert.Equal(t, "created_at", locationSortColumns.resolve("name"), "columns are per listing")
	assert.Equal(t, "approved_at", stockOutSortColumns.resolve("approved_at"))
	assert.Equal(t, "created_at", stockInSortColumns.resolve("approved_at"))
}

func TestSortDescending(t *testing.T) {
	assert.False(t, sortDescending("asc"))
	assert.False(t, sortDescending(" ASC "))
	assert.True(t, sortDescending(""))
	assert.True(t, sortDescending("desc"))
	assert.True(t, sortDescending("ASC; --"))
}

func TestApplyPaging_OrderClause(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	render := func(filter shared.Filter) string {
		var rows []models.ProductModel
		stmt := applyPaging(db.Model(&models.ProductModel{}), filter, productSortColumns).Find(&rows).Statement
		return stmt.SQL.String()
	}

	assert.Contains(t, render(shared.Filter{OrderBy: "name", OrderDir: "ASC"}), `ORDER BY "name" LIMIT`)
	assert.Contains(t, render(shared.Filter{OrderBy: "name"}), `ORDER BY "name" DESC`)
	assert.Contains(t, render(shared.Filter{OrderBy: "secret"}), `ORDER BY "created_at" DESC`)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%bolt m8%", likePattern("  Bolt M8 "))
	assert.Equal(t, "%%", likePattern(""))
}
