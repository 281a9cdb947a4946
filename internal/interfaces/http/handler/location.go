package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// LocationHandler handles storage location endpoints
type LocationHandler struct {
	BaseHandler
	locationService *inventoryapp.LocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *inventoryapp.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// Create godoc
// @Summary      Create a storage location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateLocationRequest true "Location path"
// @Success      201 {object} dto.Response{data=inventoryapp.LocationResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := h.locationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, location)
}

// List godoc
// @Summary      List storage locations
// @Tags         locations
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventoryapp.LocationResponse,meta=dto.Meta}
// @Router       /locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter := req.Filter()

	locations, total, err := h.locationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, locations, total, filter.Page, filter.PageSize)
}
