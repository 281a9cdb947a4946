package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stockflow/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanRecordColumns = []string{
	"id", "scan_id", "product_id", "product_name", "barcode", "unit_type", "quantity",
	"flexible", "pieces_deducted", "amount", "remaining_stock", "location_id", "created_at",
}

const selectScanRecord = `SELECT \* FROM "scan_records" WHERE scan_id = \$1`

func TestGormScanRecordRepository_FindByScanID_Postgres(t *testing.T) {
	ctx := context.Background()
	productID := testutil.NewTestUUID("product")

	t.Run("maps stored row", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		repo := NewGormScanRecordRepository(mockDB.DB)

		rows := sqlmock.NewRows(scanRecordColumns).AddRow(
			testutil.NewTestUUID("row").String(), "scan-1", productID.String(), "Screws", "1000002", "pack", 2,
			false, 20, "40", 30, nil, time.Now(),
		)
		mockDB.Mock.ExpectQuery(selectScanRecord).WillReturnRows(rows)

		rec, err := repo.FindByScanID(ctx, "scan-1")
		require.NoError(t, err)
		assert.Equal(t, productID, rec.ProductID)
		assert.Equal(t, valueobject.UnitPack, rec.UnitType)
		assert.Equal(t, int64(20), rec.PiecesDeducted)
		assert.Equal(t, "40", rec.Amount.String())
		assert.Nil(t, rec.LocationID)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("empty result is not found", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		repo := NewGormScanRecordRepository(mockDB.DB)

		mockDB.Mock.ExpectQuery(selectScanRecord).WillReturnRows(sqlmock.NewRows(scanRecordColumns))

		_, err := repo.FindByScanID(ctx, "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		mockDB.ExpectationsWereMet(t)
	})
}

func TestGormTransactionScope_Postgres(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when the callback succeeds", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		scope := NewGormTransactionScope(mockDB.DB)

		mockDB.Mock.ExpectBegin()
		mockDB.Mock.ExpectQuery(selectScanRecord).WillReturnRows(sqlmock.NewRows(scanRecordColumns))
		mockDB.Mock.ExpectCommit()

		err := scope.Execute(ctx, func(repos inventory.TransactionalRepositories) error {
			_, err := repos.ScanRecordRepo().FindByScanID(ctx, "scan-1")
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		})
		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		scope := NewGormTransactionScope(mockDB.DB)

		connErr := errors.New("connection reset by peer")
		mockDB.Mock.ExpectBegin()
		mockDB.Mock.ExpectQuery(selectScanRecord).WillReturnError(connErr)
		mockDB.Mock.ExpectRollback()

		err := scope.Execute(ctx, func(repos inventory.TransactionalRepositories) error {
			_, err := repos.ScanRecordRepo().FindByScanID(ctx, "scan-1")
			return err
		})
		assert.ErrorIs(t, err, connErr)
		mockDB.ExpectationsWereMet(t)
	})
}
