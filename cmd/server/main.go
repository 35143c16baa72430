package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/catalog"
	eventapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/event"
	identityapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/identity"
	inventoryapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/notification"
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	printingapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/printing"
	productionapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/production"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/report"
	settingsapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/auth"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/cache"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/event"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/logger"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/migration"
	infranotify "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/notification"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/persistence"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/printing"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/scheduler"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/storage"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/telemetry"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/handler"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/middleware"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/VMKayser/Panificadora-Nancy-sub002/docs"
)

//	@title			Panificadora Nancy API
//	@version		1.0
//	@description	Online store, point of sale and kitchen backend of Panificadora Nancy.

//	@contact.name	Panificadora Nancy
//	@contact.url	https://github.com/VMKayser/Panificadora-Nancy

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logger.WithFields(zap.String("service", cfg.App.Name)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	loc := cfg.App.Location()

	// Telemetry: traces, metrics and logs share one resource config
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := telemetry.Bridge(baseLog, loggerProvider)
	defer func() { _ = log.Sync() }()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Profiler not started", zap.Error(err))
	}
	if profiler != nil && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting Panificadora Nancy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("timezone", loc.String()),
	)

	meter := meterProvider.Meter("bakery")

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	dbInstr, err := telemetry.NewDBInstrumentation(telemetry.DBConfig{
		Trace:           cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        db.Driver(),
	}, meter, log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := db.DB.Use(dbInstr); err != nil {
		log.Fatal("Failed to register database instrumentation", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := migrateSchema(db, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Redis is optional; every consumer has an in-process fallback
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process fallbacks", zap.Error(err))
			rdb = nil
		} else {
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	settingsCache := cache.NewTieredSettingsCache(rdb, cache.WithSettingsCacheLogger(log))
	if err := settingsCache.StartInvalidationSubscription(ctx); err != nil {
		log.Warn("Settings invalidation subscription failed", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(rdb, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	var blacklist auth.TokenBlacklist
	if rdb != nil {
		blacklist = auth.NewRedisTokenBlacklist(rdb)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	ingredientRepo := persistence.NewGormIngredientRepository(db.DB)
	stockRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	orderQueryRepo := persistence.NewGormOrderQueryRepository(db.DB, loc)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events: services write to the outbox inside their transaction, the
	// processor delivers committed entries to the bus
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	eventBus := event.NewInMemoryEventBus(log)
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.ProcessorConfigFrom(cfg.Event), log)
	outboxPublisher := event.NewOutboxPublisher(serializer, outboxRepo, event.WithCommitNotifier(outboxProcessor.Trigger))

	bakeryMetrics, err := telemetry.NewBakeryMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to create bakery metrics", zap.Error(err))
	}
	outboxProcessor.SetObserver(bakeryMetrics)
	if err := bakeryMetrics.RegisterLowStockGauge(stockRepo); err != nil {
		log.Warn("Low stock gauge not registered", zap.Error(err))
	}

	// Application services
	settingsService := settingsapp.NewService(settingRepo, settingsCache, log)

	inventoryService := inventoryapp.NewService(txScope, stockRepo, ingredientRepo, movementRepo, orderRepo, settingsService, log)
	inventoryService.SetEventSaver(outboxPublisher)
	inventoryService.SetMetrics(bakeryMetrics)

	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	productService := catalogapp.NewProductService(txScope, productRepo, categoryRepo, inventoryService, ingredientRepo, log)
	productService.SetEventSaver(outboxPublisher)
	productService.SetDefaultMinQuantity(decimal.NewFromInt(int64(cfg.Inventory.DefaultMinQuantity)))

	objectStorage, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Warn("Object storage unavailable, image uploads disabled", zap.Error(err))
		objectStorage = storage.NewDisabledObjectStorage(cfg.Storage.PublicBaseURL)
	}
	productService.SetImageStorage(objectStorage)

	orderService := orderapp.NewService(txScope, orderRepo,
		catalogapp.NewProductSaleValidator(productRepo, categoryRepo),
		inventoryService, settingsService, log)
	orderService.SetEventSaver(outboxPublisher)
	orderService.SetMetrics(bakeryMetrics)

	productionService := productionapp.NewService(txScope, orderRepo, orderQueryRepo, productRepo, batchRepo, inventoryService, loc, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	authService.SetEventSaver(outboxPublisher)
	employeeService := identityapp.NewEmployeeService(txScope, userRepo, blacklist, log)

	dashboardService := report.NewDashboardService(orderQueryRepo, stockRepo, loc)
	outboxService := eventapp.NewOutboxService(outboxRepo, outboxProcessor, log)

	var renderer printing.PDFRenderer = printing.DisabledRenderer{}
	if cfg.Printing.Enabled {
		renderer = printing.NewChromedpRenderer(cfg.Printing, log)
	}
	printService := printingapp.NewService(orderRepo, userRepo, productionService, settingsService,
		printing.NewTemplateEngine(loc), renderer, log)

	// Notifications and stock alerts, delivered at most once per event
	notifications := notification.NewService(
		infranotify.NewSMTPMailer(cfg.Mail, log),
		infranotify.NewWhatsAppClient(cfg.WhatsApp, log),
		settingsService, loc, log,
	)
	idempotency := shared.IdempotencyConfig{Enabled: true, TTL: cfg.Event.IdempotencyTTL}
	subscribe := func(name string, h shared.EventHandler) {
		eventBus.Subscribe(event.NewIdempotentHandler(h, idempotencyStore, log,
			event.WithHandlerName(name),
			event.WithIdempotencyConfig(idempotency),
		))
	}
	subscribe("notification.mail", notification.NewMailHandler(notifications))
	subscribe("notification.whatsapp", notification.NewWhatsAppHandler(notifications))
	subscribe("inventory.stock_alert",
		inventoryapp.NewStockBelowMinimumHandler(log, productRepo, ingredientRepo).WithNotifier(notifications))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	// Background jobs
	var (
		jobScheduler *scheduler.Scheduler
		cronTrigger  *scheduler.CronTrigger
	)
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultConfig()
		if cfg.Scheduler.JobTimeout > 0 {
			schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
		}
		runner := scheduler.NewJobRunner(orderService, inventoryService, notifications, settingsService, log)
		jobScheduler = scheduler.NewScheduler(schedCfg, runner, log)
		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		triggerCfg, err := scheduler.CronTriggerConfigFrom(cfg.Scheduler, loc)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		cronTrigger = scheduler.NewCronTrigger(triggerCfg, jobScheduler, log)
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start job trigger", zap.Error(err))
		}
		log.Info("Scheduler started",
			zap.Duration("check_interval", triggerCfg.CheckInterval),
			zap.String("digest_at", cfg.Scheduler.LowStockDigestAt),
		)
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	var (
		apiLimiter  middleware.Limiter
		authLimiter middleware.Limiter
		memLimiters []*middleware.MemoryLimiter
	)
	newLimiter := func(prefix string, limit int, every time.Duration) middleware.Limiter {
		if rdb != nil {
			return middleware.NewRedisLimiter(rdb, prefix, limit, every)
		}
		l := middleware.NewMemoryLimiter(limit, every)
		memLimiters = append(memLimiters, l)
		return l
	}
	if cfg.HTTP.RateLimitEnabled {
		apiLimiter = newLimiter("ratelimit:api:", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter = newLimiter("ratelimit:auth:", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authLimit = middleware.RateLimit(authLimiter, log)
	}

	var healthRedis redis.UniversalClient
	if rdb != nil {
		healthRedis = rdb
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		HTTP:        cfg.HTTP,
		Security:    middleware.DefaultSecurityConfig(),
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
		Meter:     meter,
		Profiling: profiler != nil && profiler.IsEnabled(),
		Health:    router.NewHealth(sqlDB, healthRedis, router.DefaultReadyTimeout),
		Limiter:   apiLimiter,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	jwtCfg := middleware.JWTMiddlewareConfig{
		Validator:      jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Category:   handler.NewCategoryHandler(categoryService),
		Product:    handler.NewProductHandler(productService),
		Order:      handler.NewOrderHandler(orderService),
		Inventory:  handler.NewInventoryHandler(inventoryService),
		Production: handler.NewProductionHandler(productionService),
		Print:      handler.NewPrintHandler(printService),
		Settings:   handler.NewSettingsHandler(settingsService),
		Employee:   handler.NewEmployeeHandler(employeeService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Outbox:     handler.NewOutboxHandler(outboxService),
		System:     handler.NewSystemHandler(cfg.App.Name, version, cfg.App.Env, loc),
	}, router.Guards{
		Required:  middleware.JWTAuthMiddleware(jwtCfg),
		Optional:  middleware.OptionalJWTAuthMiddleware(jwtCfg),
		AuthLimit: authLimit,
	})
	log.Debug("API routes mounted", zap.Int("routes", r.Setup()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Reverse order of startup: stop taking requests, then drain the
	// background work, then release connections and exporters.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, l := range memLimiters {
		l.Close()
	}
	if cronTrigger != nil {
		logStop(log, "job trigger", cronTrigger.Stop(shutdownCtx))
	}
	if jobScheduler != nil {
		logStop(log, "scheduler", jobScheduler.Stop(shutdownCtx))
	}
	if cfg.Event.ProcessorEnabled {
		logStop(log, "outbox processor", outboxProcessor.Stop(shutdownCtx))
	}
	logStop(log, "event bus", eventBus.Stop(shutdownCtx))
	logStop(log, "renderer", renderer.Close())
	if closer, ok := idempotencyStore.(interface{ Close() error }); ok {
		logStop(log, "idempotency store", closer.Close())
	}
	logStop(log, "settings cache", settingsCache.Close())
	if rdb != nil {
		logStop(log, "redis", rdb.Close())
	}
	logStop(log, "database", db.Close())
	if profiler != nil {
		logStop(log, "profiler", profiler.Stop())
	}
	logStop(log, "logger provider", loggerProvider.Shutdown(shutdownCtx))
	logStop(log, "meter provider", meterProvider.Shutdown(shutdownCtx))
	logStop(log, "tracer provider", tracerProvider.Shutdown(shutdownCtx))

	log.Info("Server exited gracefully")
}

// migrateSchema brings the schema up to date: versioned migrations on
// postgres, gorm AutoMigrate on sqlite
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver() == "sqlite" {
		return persistence.AutoMigrate(db.DB)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	return m.Up()
}

func logStop(log *zap.Logger, component string, err error) {
	if err != nil {
		log.Error("Error stopping "+component, zap.Error(err))
	}
}
