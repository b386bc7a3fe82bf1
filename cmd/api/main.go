package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront-api/internal/cache"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/logging"
	"storefront-api/internal/payment"
	"storefront-api/internal/repository"
	"storefront-api/internal/server"
	"storefront-api/internal/service"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Environment.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}

	var cartCache cache.CartCache = cache.NopCartCache{}
	rdb, err := client.InitRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("init redis")
	}
	if rdb != nil {
		defer rdb.Close()
		cartCache = cache.NewRedisCartCache(rdb)
		log.Info().Msg("cart cache enabled")
	}

	providers, err := payment.NewRegistry(cfg.Payment.Provider,
		payment.NewPaymobProvider(client.NewPaymobClient(&cfg.Paymob), &cfg.Paymob, cfg.BaseURL),
		payment.NewPaypalProvider(client.NewPaypalClient(&cfg.Paypal), cfg.BaseURL),
		payment.NewBraintreeProvider(client.NewBraintreeClient(&cfg.BrainTree)),
		payment.NewCashProvider(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init payment providers")
	}

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	catalogService := service.NewCatalogService(productRepo)
	if cfg.Store.SeedCatalog {
		if err := catalogService.SeedDemoCatalog(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed catalog")
		}
	}

	srv := server.NewServer(server.Services{
		Cart:     service.NewCartService(cartRepo, productRepo, cartCache, log),
		Catalog:  catalogService,
		Address:  service.NewAddressService(addressRepo),
		Checkout: service.NewCheckoutService(db, cartRepo, addressRepo, orderRepo, providers, cfg.Store.DefaultCurrency, log),
		Order: service.NewOrderService(
			db,
			orderRepo,
			paymentRepo,
			webhookEventRepo,
			inventoryRepo,
			cartRepo,
			cartCache,
			providers,
			log,
		),
	}, server.Options{
		JWTSecret:       cfg.Auth.JWTSecret,
		DefaultProvider: cfg.Payment.Provider,
	}, log)

	serverAddr := cfg.ServerAddr()
	log.Info().Str("addr", serverAddr).Str("payment_provider", cfg.Payment.Provider).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
}
