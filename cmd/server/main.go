package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/phoneshop/backend/internal/application/cart"
	catalogapp "github.com/phoneshop/backend/internal/application/catalog"
	checkoutapp "github.com/phoneshop/backend/internal/application/checkout"
	identityapp "github.com/phoneshop/backend/internal/application/identity"
	notificationapp "github.com/phoneshop/backend/internal/application/notification"
	orderapp "github.com/phoneshop/backend/internal/application/order"
	paymentapp "github.com/phoneshop/backend/internal/application/payment"
	domainnotification "github.com/phoneshop/backend/internal/domain/notification"
	"github.com/phoneshop/backend/internal/infrastructure/auth"
	"github.com/phoneshop/backend/internal/infrastructure/cache"
	"github.com/phoneshop/backend/internal/infrastructure/config"
	"github.com/phoneshop/backend/internal/infrastructure/event"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"github.com/phoneshop/backend/internal/infrastructure/notification"
	"github.com/phoneshop/backend/internal/infrastructure/payment"
	"github.com/phoneshop/backend/internal/infrastructure/persistence"
	"github.com/phoneshop/backend/internal/interfaces/http/handler"
	"github.com/phoneshop/backend/internal/interfaces/http/middleware"
	"github.com/phoneshop/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Initialize database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	brandRepo := persistence.NewGormBrandRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	_ = persistence.NewGormStockLedger(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Idempotency store: Redis when reachable, in-memory otherwise
	var idempotency checkoutapp.IdempotencyStore
	if redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		idempotency = cache.NewInMemoryIdempotencyStore()
	} else {
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		idempotency = redisStore
	}

	// Payment provider
	paymentProvider, err := payment.NewSimulator(payment.SimulatorConfig{
		Delay:       cfg.Payment.SimulatedDelay,
		FailureRate: cfg.Payment.FailureRate,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize payment simulator", zap.Error(err))
	}

	// Initialize auth service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, brandRepo, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	orderService := orderapp.NewOrderService(orderRepo, txScope, log)
	checkoutService := checkoutapp.NewCheckoutService(
		productRepo,
		cartRepo,
		txScope,
		idempotency,
		log,
	)

	// Event infrastructure: serializer, bus, payment confirmer and
	// notification dispatcher, outbox processor draining persisted
	// events to the bus
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)

	eventBus := event.NewInMemoryEventBus(log)

	confirmer := paymentapp.NewConfirmer(orderRepo, txScope, paymentProvider, cfg.Payment.Timeout, log)
	eventBus.Subscribe(confirmer, confirmer.EventTypes()...)

	dispatcher := notificationapp.NewDispatcher(userRepo, []domainnotification.Notifier{
		notification.NewLogEmailSender(log),
		notification.NewLogSMSSender(log),
		notification.NewLogPushSender(log),
	}, log)
	eventBus.Subscribe(dispatcher, dispatcher.EventTypes()...)

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupEnabled:   cfg.Event.CleanupEnabled,
		CleanupRetention: cfg.Event.CleanupRetention,
		CleanupInterval:  cfg.Event.CleanupInterval,
	}, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	// Setup Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(cfg.HTTP.CORSAllowOrigins))

	// Route middleware shared by the protected handler groups
	authMW := middleware.JWTAuth(jwtService)
	adminMW := middleware.RequireAdmin()

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		handler.NewHealthHandler(db),
		handler.NewAuthHandler(authService, authMW),
		handler.NewCatalogHandler(productService, categoryService),
		handler.NewAdminCatalogHandler(productService, categoryService, authMW, adminMW),
		handler.NewCartHandler(cartService, authMW),
		handler.NewCheckoutHandler(checkoutService, authMW),
		handler.NewOrderHandler(orderService, authMW),
		handler.NewAdminOrderHandler(orderService, authMW, adminMW),
	)
	r.Setup()

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Stop(ctx); err != nil {
			log.Error("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
