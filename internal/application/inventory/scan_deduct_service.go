package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Scan outcomes reported to a ScanRecorder
const (
	ScanOutcomeDeducted   = "deducted"
	ScanOutcomeReplayed   = "replayed"
	ScanOutcomeInProgress = "in_progress"
	ScanOutcomeRejected   = "rejected"
)

// ScanRecorder receives one outcome per scan-and-deduct call
type ScanRecorder interface {
	RecordScan(ctx context.Context, outcome string, pieces int64)
}

// ScanOptions configure scan idempotency
type ScanOptions struct {
	Options
	// ClaimLease bounds how long an in-flight scan id stays claimed. It
	// only has to outlive one deduction: committed scans are remembered
	// by their ScanRecord, not by the claim.
	ClaimLease time.Duration
	// ReleaseTimeout bounds the claim release after a failed deduction
	ReleaseTimeout time.Duration
	// KeyPrefix namespaces scan ids in the idempotency store
	KeyPrefix string
}

// DefaultScanOptions returns the scan options used when none are configured
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Options:        DefaultOptions(),
		ClaimLease:     30 * time.Second,
		ReleaseTimeout: 5 * time.Second,
		KeyPrefix:      "stockflow:scan:",
	}
}

// ScanDeductService is the walk-up withdrawal path: resolve, convert,
// validate and deduct in one transaction per scan. The client scan id is
// claimed in the idempotency store before any work and persisted with the
// outcome, so a retried scan returns the first result instead of
// deducting again.
type ScanDeductService struct {
	txScope        TransactionScope
	scanRepo       inventory.ScanRecordRepository
	idempotency    shared.IdempotencyStore
	opts           ScanOptions
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	recorder       ScanRecorder
}

// NewScanDeductService creates a new ScanDeductService
func NewScanDeductService(
	txScope TransactionScope,
	scanRepo inventory.ScanRecordRepository,
	idempotency shared.IdempotencyStore,
	opts ScanOptions,
	logger *zap.Logger,
) *ScanDeductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultScanOptions()
	if opts.ClaimLease <= 0 {
		opts.ClaimLease = defaults.ClaimLease
	}
	if opts.ReleaseTimeout <= 0 {
		opts.ReleaseTimeout = defaults.ReleaseTimeout
	}
	return &ScanDeductService{
		txScope:     txScope,
		scanRepo:    scanRepo,
		idempotency: idempotency,
		opts:        opts,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ScanDeductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetScanRecorder sets the recorder notified of every scan outcome
func (s *ScanDeductService) SetScanRecorder(recorder ScanRecorder) {
	s.recorder = recorder
}

func (s *ScanDeductService) record(ctx context.Context, outcome string, pieces int64) {
	if s.recorder != nil {
		s.recorder.RecordScan(ctx, outcome, pieces)
	}
}

// ScanAndDeduct withdraws the scanned quantity immediately. Possible
// failures: NotFound and AmbiguousBarcode from resolution,
// InvalidConversion, InsufficientStock, and ScanInProgress when the same
// scan id is still being processed by another call.
func (s *ScanDeductService) ScanAndDeduct(ctx context.Context, req ScanDeductRequest) (*ScanDeductResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "scan_deduct", "scan",
		telemetry.AttrBarcode.String(req.Barcode),
		telemetry.AttrScanID.String(req.ScanID),
	)
	defer span.End()

	result, err := s.scanAndDeduct(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.AttrPieces.Int64(result.PiecesDeducted),
		telemetry.AttrReplayed.Bool(result.Replayed),
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *ScanDeductService) scanAndDeduct(ctx context.Context, req ScanDeductRequest) (*ScanDeductResult, error) {
	scanID, err := inventory.NormalizeScanID(req.ScanID)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("scan_id", scanID))

	if rec, err := s.findRecord(ctx, scanID); err != nil || rec != nil {
		if rec != nil {
			return s.replay(ctx, rec, req)
		}
		return nil, err
	}

	key := s.opts.KeyPrefix + scanID
	claimed, err := s.idempotency.MarkProcessed(ctx, key, s.opts.ClaimLease)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// A record written between the lookup and the claim is a replay.
		if rec, err := s.findRecord(ctx, scanID); err != nil || rec != nil {
			if rec != nil {
				return s.replay(ctx, rec, req)
			}
			return nil, err
		}
		s.record(ctx, ScanOutcomeInProgress, 0)
		return nil, shared.ErrScanInProgress.WithDetail("scan_id", scanID)
	}

	rec, err := s.deduct(ctx, scanID, req)
	if err != nil {
		s.release(ctx, log, key)
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Another instance committed this scan id first.
			if existing, findErr := s.findRecord(context.WithoutCancel(ctx), scanID); findErr == nil && existing != nil {
				return s.replay(ctx, existing, req)
			}
		}
		s.record(ctx, ScanOutcomeRejected, 0)
		return nil, err
	}

	log.Info("Scan deducted",
		zap.String("product_id", rec.ProductID.String()),
		zap.String("unit_type", rec.UnitType.String()),
		zap.Int64("pieces", rec.PiecesDeducted),
		zap.Int64("remaining", rec.RemainingStock),
	)
	s.record(ctx, ScanOutcomeDeducted, rec.PiecesDeducted)
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, inventory.NewStockScanDeductedEvent(rec))
	}
	return toScanDeductResult(rec, false), nil
}

// release drops the claim on key so the client can retry at once. The
// request ctx is usually cancelled by now (client timeout), so the release
// runs detached from it under its own deadline.
func (s *ScanDeductService) release(ctx context.Context, log *zap.Logger, key string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ReleaseTimeout)
	defer cancel()
	if err := s.idempotency.Release(releaseCtx, key); err != nil {
		log.Warn("Failed to release scan claim",
			zap.Error(err),
			zap.Duration("lease", s.opts.ClaimLease),
		)
	}
}

// replay returns the stored outcome of rec, or ALREADY_EXISTS when req
// reuses the scan id for a different withdrawal.
func (s *ScanDeductService) replay(ctx context.Context, rec *inventory.ScanRecord, req ScanDeductRequest) (*ScanDeductResult, error) {
	if fields := replayConflicts(rec, req); len(fields) > 0 {
		s.record(ctx, ScanOutcomeRejected, 0)
		return nil, shared.ErrAlreadyExists.
			WithDetail("scan_id", rec.ScanID).
			WithDetail("conflicting_fields", fields)
	}
	s.record(ctx, ScanOutcomeReplayed, 0)
	return toScanDeductResult(rec, true), nil
}

func replayConflicts(rec *inventory.ScanRecord, req ScanDeductRequest) []string {
	var fields []string
	if catalog.NormalizeBarcode(req.Barcode) != rec.Barcode {
		fields = append(fields, "barcode")
	}
	if req.Flexible != rec.Flexible {
		fields = append(fields, "flexible")
	}
	if req.Flexible {
		if req.ActualPieces != rec.Quantity {
			fields = append(fields, "actual_pieces")
		}
	} else if req.Quantity != rec.Quantity {
		fields = append(fields, "quantity")
	}
	if !sameLocation(req.LocationID, rec.LocationID) {
		fields = append(fields, "location_id")
	}
	return fields
}

func sameLocation(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *ScanDeductService) findRecord(ctx context.Context, scanID string) (*inventory.ScanRecord, error) {
	rec, err := s.scanRepo.FindByScanID(ctx, scanID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (s *ScanDeductService) deduct(ctx context.Context, scanID string, req ScanDeductRequest) (*inventory.ScanRecord, error) {
	var rec *inventory.ScanRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, unit, err := resolveProduct(ctx, repos.ProductRepo(), req.Barcode)
		if err != nil {
			return err
		}

		withdrawal := inventory.Withdrawal{
			Unit:         unit,
			Quantity:     req.Quantity,
			Mode:         inventory.ModeStandard,
			ActualPieces: req.ActualPieces,
			Override:     req.Override,
		}
		if req.Flexible {
			withdrawal.Mode = inventory.ModeFlexible
		}
		if err := s.opts.checkMode(withdrawal.Mode); err != nil {
			return err
		}
		wp, err := withdrawal.Resolve(product.Factors)
		if err != nil {
			return err
		}

		result, err := repos.Ledger().CommitDeduction(ctx, inventory.DeductionRequest{
			ProductID:  product.ID,
			Pieces:     wp.Pieces,
			LocationID: req.LocationID,
			Reference:  inventory.Reference{Type: inventory.ReferenceScan, ID: scanID},
		})
		if err != nil {
			return err
		}

		price := product.UnitPrice(unit, wp.Factors)
		if wp.Flexible {
			price = product.BasePrice
		}
		rec = &inventory.ScanRecord{
			ScanID:         scanID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Barcode:        product.Barcodes.For(unit),
			UnitType:       unit,
			Quantity:       wp.Quantity,
			Flexible:       wp.Flexible,
			PiecesDeducted: result.PiecesDeducted,
			Amount:         price.Mul(decimal.NewFromInt(wp.Quantity)),
			RemainingStock: result.RemainingPieces,
			LocationID:     req.LocationID,
			CreatedAt:      time.Now(),
		}
		return repos.ScanRecordRepo().Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
