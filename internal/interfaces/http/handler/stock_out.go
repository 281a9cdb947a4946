package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/domain/inventory"
)

// StockOutHandler handles stock-out header endpoints
type StockOutHandler struct {
	BaseHandler
	stockOutService *inventoryapp.StockOutService
	workflow       *inventoryapp.WorkflowService
}

// NewStockOutHandler creates a new StockOutHandler
func NewStockOutHandler(stockOutService *inventoryapp.StockOutService, workflow *inventoryapp.WorkflowService) *StockOutHandler {
	return &StockOutHandler{
		stockOutService: stockOutService,
		workflow:       workflow,
	}
}

// Create godoc
// @Summary      Open a stock-out
// @Tags         stock-outs
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateStockOutRequest true "Header metadata"
// @Success      201 {object} dto.Response{data=inventoryapp.StockOutResponse}
// @Router       /stock-outs [post]
func (h *StockOutHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateStockOutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	so, err := h.stockOutService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, so)
}

// List godoc
// @Summary      List stock-outs
// @Tags         stock-outs
// @Produce      json
// @Param        status query string false "pending, approved, completed or rejected"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockOutResponse,meta=dto.Meta}
// @Router       /stock-outs [get]
func (h *StockOutHandler) List(c *gin.Context) {
	var req statusListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter := req.Filter()

	list, total, err := h.stockOutService.List(c.Request.Context(), filter, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a stock-out with its lines
// @Tags         stock-outs
// @Produce      json
// @Param        id path string true "Stock-out ID"
// @Success      200 {object} dto.Response{data=inventoryapp.StockOutResponse}
// @Router       /stock-outs/{id} [get]
func (h *StockOutHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	so, err := h.stockOutService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, so)
}

// AddItem godoc
// @Summary      Scan a line into a stock-out
// @Description  flexible=true withdraws actual_pieces regardless of pack or box alignment.
// @Tags         stock-outs
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock-out ID"
// @Param        request body inventoryapp.AddStockOutItemRequest true "Scanned line"
// @Success      201 {object} dto.Response{data=inventoryapp.StockOutResponse}
// @Router       /stock-outs/{id}/items [post]
func (h *StockOutHandler) AddItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AddStockOutItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	so, err := h.stockOutService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, so)
}

// UpdateItem godoc
// @Summary      Edit a pending stock-out line
// @Tags         stock-outs
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock-out ID"
// @Param        itemId path string true "Line ID"
// @Param        request body inventoryapp.UpdateItemRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=inventoryapp.StockOutResponse}
// @Router       /stock-outs/{id}/items/{itemId} [put]
func (h *StockOutHandler) UpdateItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}
	var req inventoryapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	so, err := h.stockOutService.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, so)
}

// RemoveItem godoc
// @Summary      Remove a pending stock-out line
// @Tags         stock-outs
// @Produce      json
// @Param        id path string true "Stock-out ID"
// @Param        itemId path string true "Line ID"
// @Success      200 {object} dto.Response{data=inventoryapp.StockOutResponse}
// @Router       /stock-outs/{id}/items/{itemId} [delete]
func (h *StockOutHandler) RemoveItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}

	so, err := h.stockOutService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, so)
}

// Transition godoc
// @Summary      Approve, complete or reject a stock-out
// @Description  Approval re-checks per-product totals against the ledger.
// @Description  Completion deducts every line atomically or not at all.
// @Tags         stock-outs
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock-out ID"
// @Param        action path string true "approve, complete or reject"
// @Param        request body inventoryapp.TransitionRequest false "Reject reason"
// @Success      200 {object} dto.Response{data=inventoryapp.TransitionResult}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "INVALID_STATE"
// @Router       /stock-outs/{id}/{action} [post]
func (h *StockOutHandler) Transition(c *gin.Context) {
	transition(&h.BaseHandler, h.workflow, inventory.HeaderStockOut, c)
}
