package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockflow/backend/internal/application/catalog"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService  *catalogapp.ProductService
	locationService *inventoryapp.LocationService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, locationService *inventoryapp.LocationService) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		locationService: locationService,
	}
}

// Register godoc
// @Summary      Register a product
// @Description  Registers a product with up to three barcodes. A barcode already
// @Description  carried by another product yields kind=duplicate and nothing is
// @Description  saved, unless force=true.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        force query bool false "Save despite barcode conflicts"
// @Param        request body catalogapp.RegisterProductRequest true "Product registration request"
// @Success      201 {object} dto.Response{data=catalogapp.RegistrationResult}
// @Success      200 {object} dto.Response{data=catalogapp.RegistrationResult} "duplicate"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [post]
func (h *ProductHandler) Register(c *gin.Context) {
	var req catalogapp.RegisterProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.productService.RegisterProduct(c.Request.Context(), req, forceParam(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.registration(c, result)
}

// registration answers 201 when the product was saved and 200 with the
// conflict list when it was not.
func (h *ProductHandler) registration(c *gin.Context, result *catalogapp.RegistrationResult) {
	if result.Kind == catalogapp.RegistrationDuplicate {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search query string false "Name, part number or barcode"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	filter := req.Filter()

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdatePackaging godoc
// @Summary      Replace conversion factors
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.UpdatePackagingRequest true "Conversion factors"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Router       /products/{id}/packaging [put]
func (h *ProductHandler) UpdatePackaging(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdatePackagingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdatePackaging(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdatePrice godoc
// @Summary      Set the piece price
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.UpdatePriceRequest true "Piece price"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Router       /products/{id}/price [put]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdatePriceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdatePrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateBarcodes godoc
// @Summary      Replace barcodes
// @Description  Same duplicate semantics as registration.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        force query bool false "Save despite barcode conflicts"
// @Param        request body catalogapp.UpdateBarcodesRequest true "Barcodes"
// @Success      200 {object} dto.Response{data=catalogapp.RegistrationResult}
// @Router       /products/{id}/barcodes [put]
func (h *ProductHandler) UpdateBarcodes(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateBarcodesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.productService.UpdateBarcodes(c.Request.Context(), id, req, forceParam(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetStock godoc
// @Summary      Per-location stock of a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=inventoryapp.ProductStockResponse}
// @Router       /products/{id}/stock [get]
func (h *ProductHandler) GetStock(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	stock, err := h.locationService.GetProductStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}
