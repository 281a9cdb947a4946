package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
)

// WorkflowService applies approve/complete/reject to either header type
type WorkflowService struct {
	stockIns  *StockInService
	stockOuts *StockOutService
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(stockIns *StockInService, stockOuts *StockOutService) *WorkflowService {
	return &WorkflowService{stockIns: stockIns, stockOuts: stockOuts}
}

// Transition runs action against the header. Stock-ins have no approval
// step, so approve on a stock-in is an invalid state.
func (w *WorkflowService) Transition(
	ctx context.Context,
	kind inventory.HeaderKind,
	id uuid.UUID,
	action inventory.Action,
	req TransitionRequest,
) (*TransitionResult, error) {
	switch kind {
	case inventory.HeaderStockIn:
		return w.transitionStockIn(ctx, id, action, req)
	case inventory.HeaderStockOut:
		return w.transitionStockOut(ctx, id, action, req)
	}
	return nil, shared.NewValidationError("kind", "unknown transaction header kind")
}

func (w *WorkflowService) transitionStockIn(ctx context.Context, id uuid.UUID, action inventory.Action, req TransitionRequest) (*TransitionResult, error) {
	var (
		resp *StockInResponse
		err  error
	)
	switch action {
	case inventory.ActionComplete:
		resp, err = w.stockIns.Complete(ctx, id)
	case inventory.ActionReject:
		resp, err = w.stockIns.Reject(ctx, id, req.Reason)
	case inventory.ActionApprove:
		if _, err := w.stockIns.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, shared.NewDomainError(shared.CodeInvalidState, "stock-ins are completed directly and cannot be approved")
	default:
		return nil, shared.NewValidationError("action", "action must be one of approve, complete, reject")
	}
	if err != nil {
		return nil, err
	}
	return &TransitionResult{
		Kind:      inventory.HeaderStockIn,
		ID:        resp.ID,
		Reference: resp.Reference,
		Action:    action,
		Status:    resp.Status,
	}, nil
}

func (w *WorkflowService) transitionStockOut(ctx context.Context, id uuid.UUID, action inventory.Action, req TransitionRequest) (*TransitionResult, error) {
	var (
		resp *StockOutResponse
		err  error
	)
	switch action {
	case inventory.ActionApprove:
		resp, err = w.stockOuts.Approve(ctx, id)
	case inventory.ActionComplete:
		resp, err = w.stockOuts.Complete(ctx, id)
	case inventory.ActionReject:
		resp, err = w.stockOuts.Reject(ctx, id, req.Reason)
	default:
		return nil, shared.NewValidationError("action", "action must be one of approve, complete, reject")
	}
	if err != nil {
		return nil, err
	}
	return &TransitionResult{
		Kind:      inventory.HeaderStockOut,
		ID:        resp.ID,
		Reference: resp.Reference,
		Action:    action,
		Status:    resp.Status,
	}, nil
}
