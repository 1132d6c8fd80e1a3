package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/manajir-storefront/config"
	"github.com/ikkim/manajir-storefront/internal/app/controller"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/repository"
	"github.com/ikkim/manajir-storefront/internal/app/service"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/internal/db"
	"github.com/ikkim/manajir-storefront/internal/middleware"
	"github.com/ikkim/manajir-storefront/internal/router"
	"github.com/ikkim/manajir-storefront/internal/scheduler"
	"github.com/ikkim/manajir-storefront/internal/storage"
	"github.com/ikkim/manajir-storefront/internal/websocket"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/ikkim/manajir-storefront/pkg/redis"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting storefront server", map[string]interface{}{
		"environment":    cfg.Server.Environment,
		"port":           cfg.Server.Port,
		"log_level":      logLevel,
		"storage_driver": cfg.Storage.Driver,
		"api_base_url":   cfg.Storefront.BaseURL,
	})

	// Redis backs the catalog cache and, by default, the cart/wishlist snapshots
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	var snapshots repository.SnapshotRepository
	switch cfg.Storage.Driver {
	case "postgres":
		if err := db.Initialize(&cfg.Database); err != nil {
			logger.Fatal("Failed to initialize database", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}()
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to run migrations", err)
		}
		snapshots = repository.NewGormSnapshotRepository(db.GetDB())
	default:
		snapshots = repository.NewRedisSnapshotRepository(redis.GetClient(), cfg.Storage.TTL)
	}

	// Storefront API client
	api, err := storefrontapi.NewClient(storefrontapi.Config{
		BaseURL:         cfg.Storefront.BaseURL,
		Timeout:         cfg.Storefront.Timeout,
		BreakerFailures: cfg.Storefront.BreakerFailures,
		BreakerCooldown: cfg.Storefront.BreakerCooldown,
	})
	if err != nil {
		logger.Fatal("Failed to create storefront API client", err)
	}

	calc, err := pricing.New(cfg.Checkout.FreeShippingThreshold, cfg.Checkout.FlatShippingFee, cfg.Checkout.TaxRate)
	if err != nil {
		logger.Fatal("Invalid pricing configuration", err)
	}

	// Initialize services
	registry := store.NewRegistry(snapshots)
	catalogCache := repository.NewRedisCatalogCache(redis.GetClient(), cfg.Catalog.CacheTTL)

	catalogService := service.NewCatalogService(api, catalogCache)
	cartService := service.NewCartService(registry, catalogService, calc)
	wishlistService := service.NewWishlistService(registry, catalogService, cartService)
	addressService := service.NewAddressService(api)
	orderService := service.NewOrderService(api)

	var checkoutOpts []service.CheckoutOption
	if cfg.Receipts.Bucket != "" {
		archive, err := storage.NewReceiptArchive(context.Background(), storage.S3Config{
			Region:          cfg.Receipts.Region,
			Bucket:          cfg.Receipts.Bucket,
			AccessKeyID:     cfg.Receipts.AccessKeyID,
			SecretAccessKey: cfg.Receipts.SecretAccessKey,
			Endpoint:        cfg.Receipts.Endpoint,
			Prefix:          cfg.Receipts.Prefix,
			BaseURL:         cfg.Receipts.BaseURL,
			URLExpiry:       cfg.Receipts.URLExpiry,
		})
		if err != nil {
			logger.Fatal("Failed to initialize receipt archive", err)
		}
		checkoutOpts = append(checkoutOpts, service.WithReceiptArchive(archive))
		logger.Info("Receipt archive enabled", map[string]interface{}{
			"bucket": cfg.Receipts.Bucket,
		})
	}
	checkoutService := service.NewCheckoutService(registry, api, addressService, calc, cfg.Checkout.OrderTimeout, checkoutOpts...)

	// Push cart and wishlist changes to open tabs
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(websocket.RegistrySnapshot(registry))
	go hub.Run(hubCtx)
	registry.SetListener(hub.OnStoreChange)

	// Initialize controllers
	productController := controller.NewProductController(catalogService)
	cartController := controller.NewCartController(cartService)
	wishlistController := controller.NewWishlistController(wishlistService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	addressController := controller.NewAddressController(addressService)
	orderController := controller.NewOrderController(orderService)
	realtimeController := controller.NewRealtimeController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		wishlistController,
		checkoutController,
		addressController,
		orderController,
		realtimeController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Keep the catalog cache warm
	catalogScheduler := scheduler.NewCatalogScheduler(catalogService, cfg.Catalog.RefreshSpec, cfg.Storefront.Timeout)
	if err := catalogScheduler.Start(); err != nil {
		logger.Warn("Catalog scheduler disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer catalogScheduler.Stop()
	}

	// Release idle sessions from memory
	sessionSweeper := scheduler.NewSessionSweeper(registry, cfg.Storage.SweepSpec, cfg.Storage.IdleTimeout, checkoutService)
	if err := sessionSweeper.Start(); err != nil {
		logger.Warn("Session sweeper disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer sessionSweeper.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Checkout.OrderTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
