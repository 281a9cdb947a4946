package inventory

import (
	"context"
	"fmt"

	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockDepletedHandler watches scan deductions and raises an alert when a
// scan empties a product or leaves it under the low-stock threshold.
type StockDepletedHandler struct {
	logger    *zap.Logger
	notifier  StockAlertNotifier
	threshold int64
}

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	ProductID       string `json:"product_id"`
	ScanID          string `json:"scan_id"`
	RemainingPieces int64  `json:"remaining_pieces"`
	Threshold       int64  `json:"threshold"`
	AlertType       string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewStockDepletedHandler creates a new handler. A threshold of zero only
// alerts on empty stock.
func NewStockDepletedHandler(logger *zap.Logger, threshold int64) *StockDepletedHandler {
	return &StockDepletedHandler{
		logger:    logger,
		threshold: max(threshold, 0),
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockDepletedHandler) WithNotifier(notifier StockAlertNotifier) *StockDepletedHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockDepletedHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockScanDeducted}
}

// Handle processes a StockScanDeductedEvent
func (h *StockDepletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	scanEvent, ok := event.(*inventory.StockScanDeductedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockScanDeducted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockScanDeducted, event.EventType())
	}

	if scanEvent.RemainingStock > h.threshold {
		return nil
	}

	alertType := "low_stock"
	if scanEvent.RemainingStock <= 0 {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		ProductID:       scanEvent.ProductID.String(),
		ScanID:          scanEvent.ScanID,
		RemainingPieces: scanEvent.RemainingStock,
		Threshold:       h.threshold,
		AlertType:       alertType,
	}

	h.logger.Warn("stock running out after scan",
		zap.String("product_id", alert.ProductID),
		zap.String("scan_id", alert.ScanID),
		zap.Int64("remaining_pieces", alert.RemainingPieces),
		zap.String("alert_type", alertType),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure shouldn't fail the event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Ensure StockDepletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*StockDepletedHandler)(nil)

// LoggingStockAlertNotifier delivers alerts to the log. It is the default
// notifier until an outbound channel is configured.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("stock alert",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("scan_id", alert.ScanID),
		zap.Int64("remaining_pieces", alert.RemainingPieces),
		zap.Int64("threshold", alert.Threshold),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
