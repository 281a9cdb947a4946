package telemetry

import (
	"context"
	"errors"

	"github.com/stockflow/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for service spans
const TracerName = "stockflow"

// Attribute keys shared by spans and metrics
var (
	AttrProductID  = attribute.Key("stock.product_id")
	AttrBarcode    = attribute.Key("stock.barcode")
	AttrUnitType   = attribute.Key("stock.unit_type")
	AttrPieces     = attribute.Key("stock.pieces")
	AttrScanID     = attribute.Key("stock.scan_id")
	AttrOutcome    = attribute.Key("stock.scan_outcome")
	AttrReplayed   = attribute.Key("stock.scan_replayed")
	AttrEventType  = attribute.Key("stock.event_type")
	AttrErrorCode  = attribute.Key("error.code")
	AttrTransition = attribute.Key("stock.transition")
)

// StartServiceSpan starts an internal span named "{service}.{method}".
// The caller must End the returned span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "scan_deduct", "scan")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span failed. Domain errors also carry their code
// so traces can be filtered by INSUFFICIENT_STOCK and friends.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		span.SetAttributes(AttrErrorCode.String(domainErr.Code))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span successful
func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// GetTraceID returns the trace id of the span in ctx, or "" when none
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
