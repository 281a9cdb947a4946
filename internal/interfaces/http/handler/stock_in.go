package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/domain/inventory"
)

// StockInHandler handles stock-in header endpoints
type StockInHandler struct {
	BaseHandler
	stockInService *inventoryapp.StockInService
	workflow       *inventoryapp.WorkflowService
}

// NewStockInHandler creates a new StockInHandler
func NewStockInHandler(stockInService *inventoryapp.StockInService, workflow *inventoryapp.WorkflowService) *StockInHandler {
	return &StockInHandler{
		stockInService: stockInService,
		workflow:       workflow,
	}
}

// Create godoc
// @Summary      Open a stock-in
// @Tags         stock-ins
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateStockInRequest true "Header metadata"
// @Success      201 {object} dto.Response{data=inventoryapp.StockInResponse}
// @Router       /stock-ins [post]
func (h *StockInHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateStockInRequest
	if !h.bindJSON(c, &req) {
		return
	}

	si, err := h.stockInService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, si)
}

// List godoc
// @Summary      List stock-ins
// @Tags         stock-ins
// @Produce      json
// @Param        status query string false "pending, completed or rejected"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockInResponse,meta=dto.Meta}
// @Router       /stock-ins [get]
func (h *StockInHandler) List(c *gin.Context) {
	var req statusListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter := req.Filter()

	list, total, err := h.stockInService.List(c.Request.Context(), filter, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a stock-in with its lines
// @Tags         stock-ins
// @Produce      json
// @Param        id path string true "Stock-in ID"
// @Success      200 {object} dto.Response{data=inventoryapp.StockInResponse}
// @Router       /stock-ins/{id} [get]
func (h *StockInHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	si, err := h.stockInService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, si)
}

// AddItem godoc
// @Summary      Scan a line into a stock-in
// @Tags         stock-ins
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock-in ID"
// @Param        request body inventoryapp.AddStockInItemRequest true "Scanned line"
// @Success      201 {object} dto.Response{data=inventoryapp.StockInResponse}
// @Router       /stock-ins/{id}/items [post]
func (h *StockInHandler) AddItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AddStockInItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	si, err := h.stockInService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, si)
}

// UpdateItem godoc
// @Summary      Edit a pending stock-in line
// @Tags         stock-ins
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock-in ID"
// @Param        itemId path string true "Line ID"
// @Param        request body inventoryapp.UpdateItemRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=inventoryapp.StockInResponse}
// @Router       /stock-ins/{id}/items/{itemId} [put]
func (h *StockInHandler) UpdateItem(c *gin.Context) {
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

	si, err := h.stockInService.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, si)
}

// RemoveItem godoc
// @Summary      Remove a pending stock-in line
// @Tags         stock-ins
// @Produce      json
// @Param        id path string true "Stock-in ID"
// @Param        itemId path string true "Line ID"
// @Success      200 {object} dto.Response{data=inventoryapp.StockInResponse}
// @Router       /stock-ins/{id}/items/{itemId} [delete]
func (h *StockInHandler) RemoveItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}

	si, err := h.stockInService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, si)
}

// Transition godoc
// @Summary      Complete or reject a stock-in
// @Description  Completing commits every line to the ledger in one transaction.
// @Tags         stock-ins
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock-in ID"
// @Param        action path string true "complete or reject"
// @Param        request body inventoryapp.TransitionRequest false "Reject reason"
// @Success      200 {object} dto.Response{data=inventoryapp.TransitionResult}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "INVALID_STATE"
// @Router       /stock-ins/{id}/{action} [post]
func (h *StockInHandler) Transition(c *gin.Context) {
	transition(&h.BaseHandler, h.workflow, inventory.HeaderStockIn, c)
}
