package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
)

// CalculatorHandler exposes unit conversion and sufficiency checks
type CalculatorHandler struct {
	BaseHandler
	calculator *inventoryapp.Calculator
}

// NewCalculatorHandler creates a new CalculatorHandler
func NewCalculatorHandler(calculator *inventoryapp.Calculator) *CalculatorHandler {
	return &CalculatorHandler{calculator: calculator}
}

// Convert godoc
// @Summary      Convert a quantity to pieces
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ConversionRequest true "Conversion request"
// @Success      200 {object} dto.Response{data=inventoryapp.ConversionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo} "INVALID_CONVERSION"
// @Router       /conversions [post]
func (h *CalculatorHandler) Convert(c *gin.Context) {
	var req inventoryapp.ConversionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.calculator.ComputeConversion(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Sufficiency godoc
// @Summary      Check a withdrawal against available stock
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.SufficiencyRequest true "Sufficiency request"
// @Success      200 {object} dto.Response{data=inventoryapp.SufficiencyResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "INSUFFICIENT_STOCK"
// @Router       /sufficiency [post]
func (h *CalculatorHandler) Sufficiency(c *gin.Context) {
	var req inventoryapp.SufficiencyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.calculator.ValidateSufficiency(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
