package telemetry

import (
	"context"
	"fmt"

	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// StockMetrics counts scans and completed stock transactions. It is both
// the scan recorder of the scan-and-deduct service and an event handler
// on the domain event bus.
type StockMetrics struct {
	scans            metric.Int64Counter
	scannedPieces    metric.Int64Counter
	piecesPerScan    metric.Int64Histogram
	transactions     metric.Int64Counter
	transactedPieces metric.Int64Counter
}

// PiecesPerScanBuckets are bucket boundaries for pieces withdrawn by one scan
var PiecesPerScanBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}

// NewStockMetrics creates the stock instruments on meter
func NewStockMetrics(meter metric.Meter) (*StockMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("meter is required")
	}
	m := &StockMetrics{}
	var err error

	if m.scans, err = meter.Int64Counter("stock_scans_total",
		metric.WithDescription("Scan-and-deduct calls by outcome"),
		metric.WithUnit("{scan}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stock_scans_total: %w", err)
	}
	if m.scannedPieces, err = meter.Int64Counter("stock_scanned_pieces_total",
		metric.WithDescription("Pieces withdrawn by scans"),
		metric.WithUnit("{piece}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stock_scanned_pieces_total: %w", err)
	}
	if m.piecesPerScan, err = meter.Int64Histogram("stock_scan_pieces",
		metric.WithDescription("Pieces withdrawn per successful scan"),
		metric.WithUnit("{piece}"),
		metric.WithExplicitBucketBoundaries(PiecesPerScanBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create stock_scan_pieces: %w", err)
	}
	if m.transactions, err = meter.Int64Counter("stock_transactions_total",
		metric.WithDescription("Stock transaction lifecycle events"),
		metric.WithUnit("{transaction}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stock_transactions_total: %w", err)
	}
	if m.transactedPieces, err = meter.Int64Counter("stock_transacted_pieces_total",
		metric.WithDescription("Pieces moved by completed stock transactions"),
		metric.WithUnit("{piece}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stock_transacted_pieces_total: %w", err)
	}
	return m, nil
}

// RecordScan records one scan-and-deduct outcome
func (m *StockMetrics) RecordScan(ctx context.Context, outcome string, pieces int64) {
	attrs := metric.WithAttributes(AttrOutcome.String(outcome))
	m.scans.Add(ctx, 1, attrs)
	if pieces > 0 {
		m.scannedPieces.Add(ctx, pieces, attrs)
		m.piecesPerScan.Record(ctx, pieces)
	}
}

// Handle counts stock transaction events
func (m *StockMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	attrs := metric.WithAttributes(AttrEventType.String(event.EventType()))
	m.transactions.Add(ctx, 1, attrs)

	switch e := event.(type) {
	case *inventory.StockInCompletedEvent:
		m.transactedPieces.Add(ctx, e.TotalPieces, attrs)
	case *inventory.StockOutCompletedEvent:
		m.transactedPieces.Add(ctx, e.TotalPieces, attrs)
	}
	return nil
}

// EventTypes returns the transaction events this handler counts. Scan
// deductions are already recorded through RecordScan.
func (m *StockMetrics) EventTypes() []string {
	return []string{
		inventory.EventTypeStockInCreated,
		inventory.EventTypeStockInCompleted,
		inventory.EventTypeStockInRejected,
		inventory.EventTypeStockOutCreated,
		inventory.EventTypeStockOutApproved,
		inventory.EventTypeStockOutCompleted,
		inventory.EventTypeStockOutRejected,
	}
}

var _ shared.EventHandler = (*StockMetrics)(nil)
