package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockflow/backend/internal/application/catalog"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/infrastructure/cache"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testApp serves the API over an in-memory sqlite database
type testApp struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
}

func newTestApp(t *testing.T, opts inventoryapp.Options) *testApp {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	productRepo := persistence.NewGormProductRepository(db)
	locationRepo := persistence.NewGormLocationRepository(db)
	stockInRepo := persistence.NewGormStockInRepository(db)
	stockOutRepo := persistence.NewGormStockOutRepository(db)
	scanRepo := persistence.NewGormScanRecordRepository(db)
	ledger := persistence.NewGormStockLedger(db)
	txScope := persistence.NewGormTransactionScope(db)

	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	stockIns := inventoryapp.NewStockInService(stockInRepo, productRepo, locationRepo, txScope)
	stockOuts := inventoryapp.NewStockOutService(stockOutRepo, productRepo, ledger, txScope, opts)
	workflow := inventoryapp.NewWorkflowService(stockIns, stockOuts)
	locations := inventoryapp.NewLocationService(locationRepo, productRepo, ledger)
	scanOpts := inventoryapp.DefaultScanOptions()
	scanOpts.Options = opts
	scans := inventoryapp.NewScanDeductService(txScope, scanRepo, idempotency, scanOpts, zap.NewNop())

	products := NewProductHandler(catalogapp.NewProductService(productRepo), locations)
	locationHandler := NewLocationHandler(locations)
	barcodes := NewBarcodeHandler(inventoryapp.NewBarcodeResolver(productRepo, ledger))
	calculator := NewCalculatorHandler(inventoryapp.NewCalculator(productRepo, ledger, opts))
	stockInHandler := NewStockInHandler(stockIns, workflow)
	stockOutHandler := NewStockOutHandler(stockOuts, workflow)
	scanHandler := NewScanHandler(scans)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.POST("/products", products.Register)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.GetByID)
	api.PUT("/products/:id/packaging", products.UpdatePackaging)
	api.PUT("/products/:id/price", products.UpdatePrice)
	api.PUT("/products/:id/barcodes", products.UpdateBarcodes)
	api.GET("/products/:id/stock", products.GetStock)
	api.POST("/locations", locationHandler.Create)
	api.GET("/locations", locationHandler.List)
	api.GET("/barcodes/:code/resolve", barcodes.Resolve)
	api.GET("/barcodes/:code/lookup", barcodes.Lookup)
	api.POST("/conversions", calculator.Convert)
	api.POST("/sufficiency", calculator.Sufficiency)
	api.POST("/stock-ins", stockInHandler.Create)
	api.GET("/stock-ins", stockInHandler.List)
	api.GET("/stock-ins/:id", stockInHandler.GetByID)
	api.POST("/stock-ins/:id/items", stockInHandler.AddItem)
	api.PUT("/stock-ins/:id/items/:itemId", stockInHandler.UpdateItem)
	api.DELETE("/stock-ins/:id/items/:itemId", stockInHandler.RemoveItem)
	api.POST("/stock-ins/:id/:action", stockInHandler.Transition)
	api.POST("/stock-outs", stockOutHandler.Create)
	api.GET("/stock-outs", stockOutHandler.List)
	api.GET("/stock-outs/:id", stockOutHandler.GetByID)
	api.POST("/stock-outs/:id/items", stockOutHandler.AddItem)
	api.PUT("/stock-outs/:id/items/:itemId", stockOutHandler.UpdateItem)
	api.DELETE("/stock-outs/:id/items/:itemId", stockOutHandler.RemoveItem)
	api.POST("/stock-outs/:id/:action", stockOutHandler.Transition)
	api.POST("/scans/deduct", scanHandler.Deduct)

	return &testApp{t: t, engine: engine, db: db}
}

// do sends a request and decodes the envelope
func (a *testApp) do(method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

// data re-decodes the envelope payload into out
func data(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// registerProduct creates a product with 10 pieces per pack, 5 packs per
// box and a base price of 2.00 per piece.
func (a *testApp) registerProduct(name, piece, pack, box string) catalogapp.ProductResponse {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/v1/products", map[string]any{
		"name":            name,
		"piece_barcode":   piece,
		"pack_barcode":    pack,
		"box_barcode":     box,
		"pieces_per_pack": 10,
		"packs_per_box":   5,
		"base_price":      "2.00",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var result catalogapp.RegistrationResult
	data(a.t, resp, &result)
	require.NotNil(a.t, result.Product)
	return *result.Product
}

func (a *testApp) createLocation(warehouse, container, rack string) inventoryapp.LocationResponse {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/v1/locations", map[string]any{
		"warehouse": warehouse,
		"container": container,
		"rack":      rack,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var loc inventoryapp.LocationResponse
	data(a.t, resp, &loc)
	return loc
}

// receive books pieces into a location through a completed stock-in
func (a *testApp) receive(barcode string, quantity int64, location inventoryapp.LocationResponse) {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/v1/stock-ins", map[string]any{"supplier_name": "Acme"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var si inventoryapp.StockInResponse
	data(a.t, resp, &si)

	w, _ = a.do(http.MethodPost, "/api/v1/stock-ins/"+si.ID.String()+"/items", map[string]any{
		"barcode":     barcode,
		"quantity":    quantity,
		"location_id": location.ID,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = a.do(http.MethodPost, "/api/v1/stock-ins/"+si.ID.String()+"/complete", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
}
