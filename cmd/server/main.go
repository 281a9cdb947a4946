package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockflow/backend/internal/application/catalog"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/infrastructure/cache"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stockflow/backend/internal/infrastructure/event"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/infrastructure/migration"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/telemetry"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"github.com/stockflow/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	// A bootstrap logger covers telemetry setup; the final logger tees into
	// the OTLP log bridge once the providers exist.
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	otelLevel, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		otelLevel = zapcore.InfoLevel
	}
	log, err := logger.New(logCfg, providers.LogCore(otelLevel))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Telemetry.SpanProfiles && profiler.IsEnabled() {
		providers.EnableSpanProfiles()
	}

	log.Info("Starting stock service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := migrateSchema(db, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	dbSystem := "postgresql"
	if db.Driver() == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Scan idempotency store
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	idempotency, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	stockInRepo := persistence.NewGormStockInRepository(db.DB)
	stockOutRepo := persistence.NewGormStockOutRepository(db.DB)
	scanRepo := persistence.NewGormScanRecordRepository(db.DB)
	ledger := persistence.NewGormStockLedger(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	opts := inventoryapp.Options{AllowFlexible: cfg.Stock.AllowFlexible}
	scanOpts := inventoryapp.ScanOptions{
		Options:    opts,
		ClaimLease: cfg.Stock.ScanClaimLease,
		KeyPrefix:  cfg.Stock.ScanKeyPrefix,
	}

	productService := catalogapp.NewProductService(productRepo)
	locationService := inventoryapp.NewLocationService(locationRepo, productRepo, ledger)
	resolver := inventoryapp.NewBarcodeResolver(productRepo, ledger)
	calculator := inventoryapp.NewCalculator(productRepo, ledger, opts)
	stockInService := inventoryapp.NewStockInService(stockInRepo, productRepo, locationRepo, txScope)
	stockOutService := inventoryapp.NewStockOutService(stockOutRepo, productRepo, ledger, txScope, opts)
	workflow := inventoryapp.NewWorkflowService(stockInService, stockOutService)
	scanService := inventoryapp.NewScanDeductService(txScope, scanRepo, idempotency, scanOpts, log)

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	stockMetrics, err := telemetry.NewStockMetrics(providers.Meter("stockflow/inventory"))
	if err != nil {
		log.Fatal("Failed to create stock metrics", zap.Error(err))
	}
	eventBus.Subscribe(stockMetrics)

	depletedHandler := inventoryapp.NewStockDepletedHandler(log, cfg.Stock.LowStockThreshold).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log.Named("alerts")))
	eventBus.Subscribe(depletedHandler)

	log.Info("Event handlers registered",
		zap.Strings("stock_metrics_events", stockMetrics.EventTypes()),
		zap.Strings("stock_depleted_events", depletedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	productService.SetEventPublisher(eventBus)
	stockInService.SetEventPublisher(eventBus)
	stockOutService.SetEventPublisher(eventBus)
	scanService.SetEventPublisher(eventBus)
	scanService.SetScanRecorder(stockMetrics)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	health := handler.NewHealthHandler(cfg.App.Name, version).
		WithCheck("database", db.Ping)
	if redisStore, ok := idempotency.(*cache.RedisIdempotencyStore); ok {
		health.WithCheck("redis", func(ctx context.Context) error {
			return redisStore.GetClient().Ping(ctx).Err()
		})
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   providers.TracingEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		AllowOrigins:     cfg.HTTP.AllowOrigins,
	}, log)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.Routes(router.Handlers{
		Products:   handler.NewProductHandler(productService, locationService),
		Locations:  handler.NewLocationHandler(locationService),
		Barcodes:   handler.NewBarcodeHandler(resolver),
		Calculator: handler.NewCalculatorHandler(calculator),
		StockIns:   handler.NewStockInHandler(stockInService, workflow),
		StockOuts:  handler.NewStockOutHandler(stockOutService, workflow),
		Scans:      handler.NewScanHandler(scanService),
		Health:     health,
	})...)
	if err := r.Setup(); err != nil {
		log.Fatal("Failed to mount routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        http.MaxBytesHandler(engine, cfg.HTTP.MaxBodySize),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the SQL migrations on postgres and AutoMigrate on
// sqlite, which the migrations do not target.
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver() == "sqlite" {
		return db.AutoMigrate()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	return m.Up()
}
