package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
)

// BarcodeHandler resolves scanned barcodes
type BarcodeHandler struct {
	BaseHandler
	resolver *inventoryapp.BarcodeResolver
}

// NewBarcodeHandler creates a new BarcodeHandler
func NewBarcodeHandler(resolver *inventoryapp.BarcodeResolver) *BarcodeHandler {
	return &BarcodeHandler{resolver: resolver}
}

// Resolve godoc
// @Summary      Resolve a barcode
// @Description  Finds the product, the unit level the code identifies, the
// @Description  unit price and the stock available in that unit.
// @Tags         barcodes
// @Produce      json
// @Param        code path string true "Scanned barcode"
// @Success      200 {object} dto.Response{data=inventoryapp.ScanResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo} "AMBIGUOUS_BARCODE"
// @Router       /barcodes/{code}/resolve [get]
func (h *BarcodeHandler) Resolve(c *gin.Context) {
	result, err := h.resolver.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Lookup godoc
// @Summary      Look up a barcode for stock-in
// @Description  An unknown code is answered with kind=new rather than 404.
// @Tags         barcodes
// @Produce      json
// @Param        code path string true "Scanned barcode"
// @Success      200 {object} dto.Response{data=inventoryapp.LookupResult}
// @Router       /barcodes/{code}/lookup [get]
func (h *BarcodeHandler) Lookup(c *gin.Context) {
	result, err := h.resolver.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
