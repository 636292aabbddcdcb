package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/retail/storefront/internal/application/catalog"
	identityapp "github.com/retail/storefront/internal/application/identity"
	reportapp "github.com/retail/storefront/internal/application/report"
	appshared "github.com/retail/storefront/internal/application/shared"
	tradeapp "github.com/retail/storefront/internal/application/trade"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/retail/storefront/internal/infrastructure/backend"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/config"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/session"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"github.com/retail/storefront/internal/interfaces/http/handler"
	"github.com/retail/storefront/internal/interfaces/http/middleware"
	"github.com/retail/storefront/internal/interfaces/http/router"
	"github.com/retail/storefront/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Service:     cfg.App.Name,
		Environment: cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting retail storefront",
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("version", version),
	)

	// Tracing
	tp, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	// Metrics. Observers stay untyped nil when metrics are off.
	var (
		metrics          *telemetry.Metrics
		failureObserver  appshared.FailureObserver
		checkoutObserver tradeapp.CheckoutObserver
		backendOpts      = []backend.Option{backend.WithLogger(log)}
		cacheOpts        = []cache.Option{cache.WithLogger(log)}
	)
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
		failureObserver = metrics
		checkoutObserver = metrics
		backendOpts = append(backendOpts, backend.WithObserver(metrics))
		cacheOpts = append(cacheOpts, cache.WithObserver(metrics))
	}

	// Session store and checkout guard: Redis when configured so that
	// several instances share sessions and in-flight checkouts
	var (
		sessionStore identity.SessionStore
		guard        shared.InFlightGuard
		redisClient  *redis.Client
	)
	switch cfg.Session.Store {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		sessionStore = session.NewRedisStore(redisClient)
		guard = cache.NewRedisInFlightGuard(redisClient, "")
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	default:
		sessionStore = session.NewInMemoryStore()
		guard = cache.NewInMemoryInFlightGuard()
		log.Warn("Using in-memory sessions; sign-ins are lost on restart")
	}
	sessions := session.NewManager(sessionStore, cfg.Session, cfg.Cookie)

	// Backend API client
	api, err := backend.New(cfg.Backend, backendOpts...)
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	// Collection cache
	collections := cache.NewCollections(cfg.Cache.TTL, cacheOpts...)
	defer func() {
		_ = collections.Close()
	}()

	// Initialize application services
	catalogService := catalogapp.NewCatalogService(api.Products, api.Categories, collections)
	productService := catalogapp.NewProductService(catalogService, api.Products, api.Inventory, api.Notifications, failureObserver)
	cartService := tradeapp.NewCartService(api.Cart, collections)
	orderService := tradeapp.NewOrderService(api.Orders, collections)
	checkoutService := tradeapp.NewCheckoutService(cartService, api.Payments, api.Orders, collections, guard, checkoutObserver)
	dashboardService := reportapp.NewDashboardService(catalogService, cartService, orderService, api.Notifications, collections)
	authService := identityapp.NewAuthService(api.Auth, sessions)

	// Initialize handlers
	homeHandler := handler.NewHomeHandler(sessions)
	handlers := handler.Handlers{
		Home:     homeHandler,
		Auth:     handler.NewAuthHandler(authService, sessions),
		Customer: handler.NewCustomerHandler(sessions, dashboardService, catalogService, cartService, checkoutService, orderService, cfg.Payment),
		Admin:    handler.NewAdminHandler(sessions, dashboardService, productService, orderService),
	}

	// Setup Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.SetHTMLTemplate(view.MustLoad())

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.Cookie.Secure

	// Middleware order matters: the request id feeds the logger, the span
	// must exist before the session tags it
	engine.Use(middleware.RequestID())
	engine.Use(logger.AccessLog(log, "/health", "/metrics"))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Secure(securityCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Session(sessions))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	if metrics != nil {
		engine.Use(metrics.GinMiddleware())
	}

	// Operational endpoints
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	if redisClient != nil {
		systemHandler.AddChecker("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	engine.GET("/health", systemHandler.Health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Page routes
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		var limiter shared.AttemptLimiter
		if redisClient != nil {
			limiter = cache.NewRedisAttemptLimiter(redisClient, "",
				cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		} else {
			mem := cache.NewInMemoryAttemptLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
			defer mem.Stop()
			limiter = mem
		}
		authLimit = middleware.AuthRateLimit(limiter)
		log.Info("Auth rate limiting enabled",
			zap.Bool("shared", redisClient != nil),
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	routes, err := router.Mount(engine, handler.Routes(handlers, authLimit)...)
	if err != nil {
		log.Fatal("Failed to mount page routes", zap.Error(err))
	}
	for _, route := range routes {
		log.Debug("Page route", zap.String("group", route.Group), zap.Stringer("route", route))
	}
	log.Info("Page routes mounted", zap.Int("count", len(routes)))
	engine.NoRoute(homeHandler.NotFound)

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
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
