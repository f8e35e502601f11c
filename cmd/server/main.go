package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	departmentapp "github.com/hms/backend/internal/application/department"
	pharmacyapp "github.com/hms/backend/internal/application/pharmacy"
	"github.com/hms/backend/internal/domain/department"
	"github.com/hms/backend/internal/domain/pharmacy"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/cache"
	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/hms/backend/internal/infrastructure/event"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/infrastructure/persistence"
	"github.com/hms/backend/internal/infrastructure/telemetry"
	"github.com/hms/backend/internal/interfaces/http/handler"
	"github.com/hms/backend/internal/interfaces/http/middleware"
	"github.com/hms/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting HMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	ctx := context.Background()

	// Tracing and metrics providers. Both fall back to no-op when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "meter provider", meterProvider.Shutdown)

	// Initialize database connection with zap-backed GORM logger and otelgorm tracing
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh),
		persistence.WithTracing(dbTracing),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	receiptLogRepo := persistence.NewGormReceiptLogRepository(db.DB)
	departmentServiceRepo := persistence.NewGormDepartmentServiceRepository(db.DB)

	// Idempotency store for receipt submissions
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore(ctx, cfg.Receiving.IdempotencyStore)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize application services
	receiptEngine := pharmacy.NewReceiptEngine(nil, nil)
	purchaseOrderService := pharmacyapp.NewPurchaseOrderService(purchaseOrderRepo, receiptLogRepo, receiptEngine)
	purchaseOrderService.SetLogger(log)
	purchaseOrderService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
		TTL:     cfg.Receiving.IdempotencyTTL,
		Enabled: cfg.Receiving.IdempotencyEnabled,
	})

	costCalculator := department.NewCostCalculator(department.CostPolicy{
		MaxPercentage: decimal.NewFromFloat(cfg.Costing.MaxPercentage),
	})
	catalogService := departmentapp.NewCatalogService(departmentServiceRepo, costCalculator)
	catalogService.SetLogger(log)
	catalogService.SetRejectNegativeFinalCost(cfg.Costing.RejectNegativeFinalCost)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Purchase order received -> receipt audit log
	receiptLogHandler := pharmacyapp.NewReceiptLogHandler(receiptLogRepo, log)
	eventBus.Subscribe(receiptLogHandler)

	log.Info("Event handlers registered",
		zap.Strings("receipt_log_events", receiptLogHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	purchaseOrderService.SetEventPublisher(eventBus)
	catalogService.SetEventPublisher(eventBus)

	// Business metrics
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meterProvider.Meter("hms-backend/business"),
		Logger:         log,
		StatusProvider: purchaseOrderService,
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	purchaseOrderService.SetBusinessMetrics(businessMetrics)
	catalogService.SetBusinessMetrics(businessMetrics)
	if meterProvider.IsEnabled() {
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.StatusCollectInterval)
	}
	defer businessMetrics.Stop()

	// Initialize HTTP handlers
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService)
	departmentServiceHandler := handler.NewDepartmentServiceHandler(catalogService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version)
	systemHandler.AddHealthCheck("database", func(context.Context) error {
		return db.Ping()
	})
	if pinger, ok := idempotencyStore.(interface{ Ping(context.Context) error }); ok {
		systemHandler.AddHealthCheck("redis", pinger.Ping)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Start the server span and inject trace attributes
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests with trace context
	// 5. Metrics - Record HTTP metrics
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
	}))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		router.DepartmentServiceRoutes(departmentServiceHandler),
		router.PurchaseOrderRoutes(purchaseOrderHandler),
		router.SystemRoutes(systemHandler),
	)
	r.Setup()
	log.Debug("Routes registered", zap.Any("routes", r.Routes()))

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// shutdownWithTimeout flushes a telemetry provider with a bounded deadline
func shutdownWithTimeout(log *zap.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
