package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/farmeet/backend/internal/application/billing"
	appreservation "github.com/farmeet/backend/internal/application/reservation"
	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/infrastructure/auth"
	"github.com/farmeet/backend/internal/infrastructure/cache"
	"github.com/farmeet/backend/internal/infrastructure/config"
	"github.com/farmeet/backend/internal/infrastructure/logger"
	"github.com/farmeet/backend/internal/infrastructure/notification"
	"github.com/farmeet/backend/internal/infrastructure/payment"
	"github.com/farmeet/backend/internal/infrastructure/persistence"
	"github.com/farmeet/backend/internal/infrastructure/scheduler"
	"github.com/farmeet/backend/internal/infrastructure/telemetry"
	"github.com/farmeet/backend/internal/interfaces/http/handler"
	"github.com/farmeet/backend/internal/interfaces/http/middleware"
	"github.com/farmeet/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Farmeet Backend API
//	@version		1.0
//	@description	Reservation and payment API for limited-capacity farm experience events

//	@contact.name	API Support
//	@contact.url	https://github.com/farmeet/backend
//	@contact.email	support@farmeet.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting Farmeet Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize telemetry providers. Both return no-op implementations when
	// telemetry is disabled, so the rest of the wiring is unconditional.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Bridge zap logs to the OTEL collector when telemetry is on
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore)
	}

	// Start continuous profiling (no-op when disabled)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilingEnabled,
		ServerAddress:       cfg.Telemetry.PyroscopeAddress,
		ApplicationName:     cfg.Telemetry.ServiceName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Link trace spans to profiles when both subsystems are active
	if cfg.Telemetry.Enabled && cfg.Telemetry.ProfilingEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Instrument the GORM connection with tracing and metrics
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled,
		WithoutVariables: cfg.App.Env == "production",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("farmeet.database"), telemetry.DBMetricsConfig{
		Enabled: cfg.Telemetry.Enabled,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize database metrics", zap.Error(err))
	} else {
		if sqlDB, sqlErr := db.DB.DB(); sqlErr == nil {
			dbMetrics.SetSQLDB(sqlDB)
			dbMetrics.StartPoolStatsCollection(ctx)
			defer dbMetrics.Stop()
		}
		if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register database metrics plugin", zap.Error(err))
		}
	}

	// Initialize repositories
	eventRepo := persistence.NewGormEventRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	participantRepo := persistence.NewGormParticipantRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	voucherRepo := persistence.NewGormVoucherRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Notifications and domain events are logged until real delivery
	// channels are attached
	notifier := notification.NewLogNotifier(log)
	eventPublisher := notification.NewLogEventPublisher(log)

	// Payment service with the configured gateway channels. Bank transfer is
	// handled in-process and needs no gateway registration.
	paymentService := appbilling.NewPaymentService(appbilling.PaymentServiceConfig{
		Scope:           txScope,
		ReservationRepo: reservationRepo,
		EventRepo:       eventRepo,
		PaymentRepo:     paymentRepo,
		VoucherRepo:     voucherRepo,
		Notifier:        notifier,
		Publisher:       eventPublisher,
		Logger:          log,
		GatewayTimeout:  cfg.Payment.GatewayTimeout,
	})
	if cfg.Payment.Stripe.Enabled {
		stripeGateway, err := payment.NewStripeAdapter(
			cfg.Payment.Stripe, cfg.Payment.CheckoutSuccessURL, cfg.Payment.CheckoutCancelURL, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
		}
		paymentService.RegisterGateway(billing.ChannelCard, stripeGateway)
		log.Info("Card channel enabled via Stripe")
	}
	if cfg.Payment.PayPay.Enabled {
		payPayGateway, err := payment.NewPayPayAdapter(cfg.Payment.PayPay, cfg.Payment.CheckoutSuccessURL, log)
		if err != nil {
			log.Fatal("Failed to initialize PayPay gateway", zap.Error(err))
		}
		paymentService.RegisterGateway(billing.ChannelPayPay, payPayGateway)
		log.Info("PayPay channel enabled")
	}

	// Reservation lifecycle services
	reservationService := appreservation.NewReservationService(appreservation.ReservationServiceConfig{
		Scope:           txScope,
		ReservationRepo: reservationRepo,
		EventRepo:       eventRepo,
		PaymentRepo:     paymentRepo,
		Payments:        paymentService,
		Notifier:        notifier,
		Publisher:       eventPublisher,
		Logger:          log,
	})
	rosterService := appreservation.NewRosterService(txScope, reservationRepo, participantRepo, eventRepo, log)
	voucherService := appbilling.NewVoucherService(voucherRepo, eventPublisher)

	// Idempotency store for webhook dedup: Redis when reachable, otherwise
	// an in-process store that at least covers gateway retries to this node.
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idemStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	callbackService := appbilling.NewCallbackService(paymentService, idemStore, shared.DefaultIdempotencyConfig(), log)
	stripeWebhookService := appbilling.NewStripeWebhookService(cfg.Payment.Stripe.WebhookSecret, callbackService, log)

	// Background reconciliation sweeps (if enabled)
	var sweeper *scheduler.ReservationSweeper
	if cfg.Scheduler.Enabled {
		sweepService := appreservation.NewSweepService(appreservation.SweepServiceConfig{
			Scope:           txScope,
			ReservationRepo: reservationRepo,
			Payments:        paymentService,
			Notifier:        notifier,
			Publisher:       eventPublisher,
			Logger:          log,
			BatchSize:       cfg.Scheduler.BatchSize,
			PendingTTL:      cfg.Scheduler.PendingTTL,
			StartCutoff:     cfg.Scheduler.StartCutoff,
		})
		sweeper = scheduler.NewReservationSweeper(sweepService, log, scheduler.ReservationSweeperConfig{
			Enabled:  true,
			Interval: cfg.Scheduler.SweepInterval,
		})
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start reservation sweeper", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				log.Error("Error stopping reservation sweeper", zap.Error(err))
			}
		}()
		log.Info("Reservation sweeper started",
			zap.Duration("interval", cfg.Scheduler.SweepInterval),
			zap.Duration("pending_ttl", cfg.Scheduler.PendingTTL),
		)
	}

	// Capacity gauges collected periodically from the database
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:            meterProvider.Meter("farmeet.business"),
		Logger:           log,
		CapacityProvider: telemetry.NewGormCapacityMetricsProvider(db.DB),
	})
	if err != nil {
		log.Warn("Failed to initialize business metrics", zap.Error(err))
	} else if cfg.Telemetry.Enabled {
		businessMetrics.StartPeriodicCollection(ctx, 5*time.Minute, 3)
		defer businessMetrics.Stop()
	}

	// Initialize HTTP handlers
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var blacklist auth.TokenBlacklist = tokenBlacklist
	if err != nil {
		log.Warn("Redis token blacklist unavailable, falling back to in-memory", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	reservationHandler := handler.NewReservationHandler(reservationService)
	rosterHandler := handler.NewRosterHandler(rosterService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	voucherHandler := handler.NewVoucherHandler(voucherService)
	stripeWebhookHandler := handler.NewStripeWebhookHandler(stripeWebhookService)
	paymentCallbackHandler := handler.NewPaymentCallbackHandler(callbackService)
	systemHandler := handler.NewSystemHandler(sweeper)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics/Profiling - Observability
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: []string{"/health", "/api/v1/health"},
	}))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness endpoint (outside API versioning) with a database ping
	engine.GET("/health", healthHandler(db, log))

	// Application health endpoint, unauthenticated
	engine.GET("/api/v1/health", systemHandler.Health)

	// Payment gateway webhook endpoints (no authentication; each handler
	// verifies the notification its own way)
	webhookGroup := engine.Group("/api/v1/webhooks")
	webhookGroup.POST("/stripe", stripeWebhookHandler.HandleStripeWebhook)
	webhookGroup.POST("/paypay", paymentCallbackHandler.HandlePayPayCallback)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/api/v1/webhooks",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Reservation domain (reservation lifecycle, invite roster)
	reservationRoutes := router.NewDomainGroup("reservations", "/reservations")
	reservationRoutes.POST("", reservationHandler.Create)
	reservationRoutes.GET("", reservationHandler.ListMine)
	reservationRoutes.GET("/:id", reservationHandler.Get)
	reservationRoutes.DELETE("/:id", reservationHandler.Cancel)
	reservationRoutes.GET("/:id/refund-preview", reservationHandler.RefundPreview)
	reservationRoutes.POST("/:id/invite-code", rosterHandler.InviteCode)
	reservationRoutes.POST("/join", rosterHandler.Join)
	reservationRoutes.GET("/:id/participants", rosterHandler.List)
	reservationRoutes.DELETE("/:id/participants/me", rosterHandler.Leave)
	reservationRoutes.DELETE("/:id/participants/:pid", rosterHandler.Remove)

	// Event-scoped listing for farm owners
	eventRoutes := router.NewDomainGroup("events", "/events")
	eventRoutes.GET("/:id/reservations", reservationHandler.ListForEvent)

	// Billing domain (payments, vouchers)
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("/reservations/:id", paymentHandler.Initiate)
	paymentRoutes.GET("/reservations/:id", paymentHandler.GetByReservation)
	paymentRoutes.POST("/:id/confirm-transfer", paymentHandler.ConfirmTransfer)

	voucherRoutes := router.NewDomainGroup("vouchers", "/vouchers")
	voucherRoutes.POST("/redeem", voucherHandler.Redeem)
	voucherRoutes.GET("/check/:code", voucherHandler.Check)
	voucherRoutes.GET("", voucherHandler.List)

	// Operational endpoints
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/sweeper", systemHandler.SweeperStatus)
	systemRoutes.POST("/sweeper/trigger", systemHandler.TriggerSweep)

	// Register all domain groups
	r.Register(reservationRoutes).
		Register(eventRoutes).
		Register(paymentRoutes).
		Register(voucherRoutes).
		Register(systemRoutes)

	// Setup routes
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
