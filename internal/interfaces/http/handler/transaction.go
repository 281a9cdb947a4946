package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// statusListRequest is a list request with an optional status filter
type statusListRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"max=20"`
}

// transition runs POST /<headers>/:id/:action through the workflow service
func transition(h *BaseHandler, workflow *inventoryapp.WorkflowService, kind inventory.HeaderKind, c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	action, err := inventory.ParseAction(c.Param("action"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req inventoryapp.TransitionRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := workflow.Transition(c.Request.Context(), kind, id, action, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
