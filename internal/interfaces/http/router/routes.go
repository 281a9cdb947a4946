package router

import (
	"github.com/gin-gonic/gin"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers mounted by Routes
type Handlers struct {
	Products   *handler.ProductHandler
	Locations  *handler.LocationHandler
	Barcodes   *handler.BarcodeHandler
	Calculator *handler.CalculatorHandler
	StockIns   *handler.StockInHandler
	StockOuts  *handler.StockOutHandler
	Scans      *handler.ScanHandler
	Health     *handler.HealthHandler
}

// Routes returns the resource groups of the stock API
func Routes(h Handlers) []RouteRegistrar {
	products := NewDomainGroup("products", "/products").
		POST("", h.Products.Register).
		GET("", h.Products.List).
		GET("/:id", h.Products.GetByID).
		PUT("/:id/packaging", h.Products.UpdatePackaging).
		PUT("/:id/price", h.Products.UpdatePrice).
		PUT("/:id/barcodes", h.Products.UpdateBarcodes).
		GET("/:id/stock", h.Products.GetStock)

	locations := NewDomainGroup("locations", "/locations").
		POST("", h.Locations.Create).
		GET("", h.Locations.List)

	barcodes := NewDomainGroup("barcodes", "/barcodes").
		GET("/:code/resolve", h.Barcodes.Resolve).
		GET("/:code/lookup", h.Barcodes.Lookup)

	calculator := NewDomainGroup("calculator", "").
		POST("/conversions", h.Calculator.Convert).
		POST("/sufficiency", h.Calculator.Sufficiency)

	stockIns := NewDomainGroup("stock-ins", "/stock-ins").
		POST("", h.StockIns.Create).
		GET("", h.StockIns.List).
		GET("/:id", h.StockIns.GetByID).
		POST("/:id/items", h.StockIns.AddItem).
		PUT("/:id/items/:itemId", h.StockIns.UpdateItem).
		DELETE("/:id/items/:itemId", h.StockIns.RemoveItem).
		POST("/:id/:action", h.StockIns.Transition)

	stockOuts := NewDomainGroup("stock-outs", "/stock-outs").
		POST("", h.StockOuts.Create).
		GET("", h.StockOuts.List).
		GET("/:id", h.StockOuts.GetByID).
		POST("/:id/items", h.StockOuts.AddItem).
		PUT("/:id/items/:itemId", h.StockOuts.UpdateItem).
		DELETE("/:id/items/:itemId", h.StockOuts.RemoveItem).
		POST("/:id/:action", h.StockOuts.Transition)

	scans := NewDomainGroup("scans", "/scans").
		POST("/deduct", h.Scans.Deduct)

	health := NewDomainGroup("health", "").
		GET("/health", h.Health.Health)

	return []RouteRegistrar{products, locations, barcodes, calculator, stockIns, stockOuts, scans, health}
}

// EngineConfig configures the middleware chain of NewEngine
type EngineConfig struct {
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	AllowOrigins     []string
}

// NewEngine builds a gin engine with the standard middleware chain:
// request id, tracing, profiling labels, recovery, request logging, CORS and
// security headers.
func NewEngine(cfg EngineConfig, log *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.AllowOrigins

	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		profilingMiddleware(cfg.ProfilingEnabled),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.CORSWithConfig(cors),
		middleware.Secure(),
	)
	return engine
}

func profilingMiddleware(enabled bool) gin.HandlerFunc {
	cfg := middleware.DefaultProfilingConfig()
	cfg.Enabled = enabled
	return middleware.ProfilingWithConfig(cfg)
}
