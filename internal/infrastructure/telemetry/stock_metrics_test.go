package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestStockMetrics(t *testing.T) (*StockMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewStockMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			byLabel := make(map[string]int64)
			for _, dp := range sum.DataPoints {
				label := ""
				if v, ok := dp.Attributes.Value(AttrOutcome); ok {
					label = v.AsString()
				}
				if v, ok := dp.Attributes.Value(AttrEventType); ok {
					label = v.AsString()
				}
				byLabel[label] += dp.Value
			}
			out[m.Name] = byLabel
		}
	}
	return out
}

func TestNewStockMetrics_NilMeter(t *testing.T) {
	_, err := NewStockMetrics(nil)
	assert.Error(t, err)
}

func TestStockMetrics_RecordScan(t *testing.T) {
	m, reader := newTestStockMetrics(t)
	ctx := context.Background()

	m.RecordScan(ctx, "deducted", 20)
	m.RecordScan(ctx, "deducted", 5)
	m.RecordScan(ctx, "replayed", 0)
	m.RecordScan(ctx, "rejected", 0)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["stock_scans_total"]["deducted"])
	assert.Equal(t, int64(1), sums["stock_scans_total"]["replayed"])
	assert.Equal(t, int64(1), sums["stock_scans_total"]["rejected"])
	assert.Equal(t, int64(25), sums["stock_scanned_pieces_total"]["deducted"])
}

func TestStockMetrics_Handle(t *testing.T) {
	m, reader := newTestStockMetrics(t)
	ctx := context.Background()

	completed := &inventory.StockInCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockInCompleted, inventory.AggregateTypeStockIn, uuid.New()),
		TotalPieces:     120,
	}
	shipped := &inventory.StockOutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockOutCompleted, inventory.AggregateTypeStockOut, uuid.New()),
		TotalPieces:     30,
	}
	rejected := &inventory.StockOutRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockOutRejected, inventory.AggregateTypeStockOut, uuid.New()),
	}

	require.NoError(t, m.Handle(ctx, completed))
	require.NoError(t, m.Handle(ctx, shipped))
	require.NoError(t, m.Handle(ctx, rejected))

	sums := collectSums(t, reader)
	assert.Equal(t, int64(1), sums["stock_transactions_total"][inventory.EventTypeStockInCompleted])
	assert.Equal(t, int64(1), sums["stock_transactions_total"][inventory.EventTypeStockOutRejected])
	assert.Equal(t, int64(120), sums["stock_transacted_pieces_total"][inventory.EventTypeStockInCompleted])
	assert.Equal(t, int64(30), sums["stock_transacted_pieces_total"][inventory.EventTypeStockOutCompleted])
}

func TestStockMetrics_EventTypesExcludeScans(t *testing.T) {
	m, _ := newTestStockMetrics(t)
	assert.NotContains(t, m.EventTypes(), inventory.EventTypeStockScanDeducted)
	assert.Contains(t, m.EventTypes(), inventory.EventTypeStockOutApproved)
}
