package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/gateway"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
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

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories and transaction scopes
	productRepo := persistence.NewGormProductRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	cartScope := persistence.NewGormCartTransactionScope(db.DB)
	checkoutScope := persistence.NewGormCheckoutTransactionScope(db.DB)
	orderScope := persistence.NewGormOrderTransactionScope(db.DB)

	// Pricing policy
	vatRate, err := decimal.NewFromString(cfg.Checkout.VATRate)
	if err != nil {
		log.Fatal("Invalid VAT rate", zap.String("vat_rate", cfg.Checkout.VATRate), zap.Error(err))
	}
	shippingFlat, err := decimal.NewFromString(cfg.Checkout.ShippingFlatRate)
	if err != nil {
		log.Fatal("Invalid shipping flat rate", zap.String("shipping_flat_rate", cfg.Checkout.ShippingFlatRate), zap.Error(err))
	}
	pricing := domaincart.NewPricingPolicy(vatRate, shippingFlat)

	// Payment gateway
	stripeGateway, err := gateway.NewStripeGateway(&gateway.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Buy-now intent store: Redis when reachable, in-memory otherwise
	intentFactory := cache.NewIntentStoreFactory(cfg.Redis, cfg.Checkout.BuyNowTTL, cache.WithLogger(log))
	intentStore, err := intentFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create intent store", zap.Error(err))
	}

	// Application services
	cartService := cartapp.NewCartService(cartScope, pricing)
	checkoutService := checkoutapp.NewCheckoutService(
		checkoutScope,
		paymentRepo,
		stripeGateway,
		intentStore,
		pricing,
		checkoutapp.Options{
			Currency:       cfg.Checkout.Currency,
			SuccessURL:     cfg.Stripe.SuccessURL,
			CancelURL:      cfg.Stripe.CancelURL,
			GatewayTimeout: cfg.Checkout.GatewayTimeout,
		},
		log,
	)
	materializer := orderapp.NewMaterializer(orderScope, paymentRepo, log)
	orderService := orderapp.NewOrderService(orderRepo, paymentRepo, materializer)
	webhookService := orderapp.NewWebhookService(stripeGateway, paymentRepo, materializer, log)

	// HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, checkoutService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, orderService)
	orderHandler := handler.NewOrderHandler(orderService)
	webhookHandler := handler.NewWebhookHandler(webhookService, log)
	productHandler := handler.NewProductHandler(productRepo)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", systemHandler.Health)

	shopperMW := middleware.ShopperIdentity(middleware.ShopperConfig{
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		CookieName:     cfg.Session.CookieName,
		CookieMaxAge:   cfg.Session.MaxAge,
		CookieSecure:   cfg.Session.Secure,
		CookieSameSite: middleware.SameSiteFromString(cfg.Session.SameSite),
		Merger:         checkoutapp.NewMergeCoordinator(cartService, checkoutService),
		Logger:         log,
	})

	r := router.New(engine,
		router.WithAPIVersion("v1"),
		router.WithShopperMiddleware(shopperMW),
	)
	r.RegisterPublic(webhookHandler)
	r.Register(cartHandler, checkoutHandler, orderHandler, productHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	if closer, ok := intentStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing intent store", zap.Error(err))
		}
	}

	log.Info("Server stopped")
}
