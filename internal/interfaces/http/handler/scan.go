package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/infrastructure/logger"
)

// ScanHandler handles walk-up scan-and-deduct withdrawals
type ScanHandler struct {
	BaseHandler
	scanService *inventoryapp.ScanDeductService
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scanService *inventoryapp.ScanDeductService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// Deduct godoc
// @Summary      Scan and deduct
// @Description  Resolves the barcode, validates the withdrawal and commits it
// @Description  in one step. Retrying with the same scan_id replays the first
// @Description  result with replayed=true and deducts nothing.
// @Tags         scans
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ScanDeductRequest true "Scan"
// @Success      201 {object} dto.Response{data=inventoryapp.ScanDeductResult}
// @Success      200 {object} dto.Response{data=inventoryapp.ScanDeductResult} "replayed"
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo} "SCAN_IN_PROGRESS"
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "INSUFFICIENT_STOCK"
// @Router       /scans/deduct [post]
func (h *ScanHandler) Deduct(c *gin.Context) {
	var req inventoryapp.ScanDeductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := logger.WithScanID(c.Request.Context(), req.ScanID)
	c.Request = c.Request.WithContext(ctx)

	result, err := h.scanService.ScanAndDeduct(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}
