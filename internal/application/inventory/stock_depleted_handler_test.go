package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockStockAlertNotifier is a mock notifier for testing
type MockStockAlertNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
}

func (n *MockStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *MockStockAlertNotifier) GetAlerts() []StockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StockAlert(nil), n.alerts...)
}

func scanEvent(remaining int64) *inventory.StockScanDeductedEvent {
	return inventory.NewStockScanDeductedEvent(&inventory.ScanRecord{
		ScanID:         "scan-" + uuid.NewString(),
		ProductID:      uuid.New(),
		UnitType:       valueobject.UnitPack,
		PiecesDeducted: 10,
		RemainingStock: remaining,
	})
}

func TestStockDepletedHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("out of stock alert", func(t *testing.T) {
		notifier := &MockStockAlertNotifier{}
		handler := NewStockDepletedHandler(zaptest.NewLogger(t), 5).WithNotifier(notifier)

		require.NoError(t, handler.Handle(ctx, scanEvent(0)))

		alerts := notifier.GetAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, "out_of_stock", alerts[0].AlertType)
	})

	t.Run("low stock alert at threshold", func(t *testing.T) {
		notifier := &MockStockAlertNotifier{}
		handler := NewStockDepletedHandler(zaptest.NewLogger(t), 5).WithNotifier(notifier)

		require.NoError(t, handler.Handle(ctx, scanEvent(5)))

		alerts := notifier.GetAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, "low_stock", alerts[0].AlertType)
		assert.Equal(t, int64(5), alerts[0].RemainingPieces)
	})

	t.Run("no alert above threshold", func(t *testing.T) {
		notifier := &MockStockAlertNotifier{}
		handler := NewStockDepletedHandler(zaptest.NewLogger(t), 5).WithNotifier(notifier)

		require.NoError(t, handler.Handle(ctx, scanEvent(6)))
		assert.Empty(t, notifier.GetAlerts())
	})

	t.Run("rejects other event types", func(t *testing.T) {
		handler := NewStockDepletedHandler(zaptest.NewLogger(t), 0)
		si := inventory.NewStockIn("Acme", "")

		err := handler.Handle(ctx, si.GetDomainEvents()[0])
		assert.Error(t, err)
	})

	t.Run("subscribes to scan events only", func(t *testing.T) {
		handler := NewStockDepletedHandler(zaptest.NewLogger(t), 0)
		assert.Equal(t, []string{inventory.EventTypeStockScanDeducted}, handler.EventTypes())
	})
}

var _ shared.EventHandler = (*StockDepletedHandler)(nil)

func TestLoggingStockAlertNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	handler := NewStockDepletedHandler(zap.NewNop(), 3).WithNotifier(NewLoggingStockAlertNotifier(zap.New(core)))

	event := scanEvent(2)
	require.NoError(t, handler.Handle(context.Background(), event))

	entries := logs.FilterMessage("stock alert").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "low_stock", fields["type"])
	assert.Equal(t, event.ScanID, fields["scan_id"])
	assert.Equal(t, event.ProductID.String(), fields["product_id"])
	assert.Equal(t, int64(2), fields["remaining_pieces"])
	assert.Equal(t, int64(3), fields["threshold"])
}
