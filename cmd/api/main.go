package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/routes"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/address"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/checkout"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	products "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/config"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/env"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/maps"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/migrate"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/redis"
)

// shutdownGrace bounds the drain of in-flight requests once a stop
// signal arrives. Checkout holds row locks, so it must not be cut short.
const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	if err := run(logg); err != nil {
		logg.Error(context.Background(), "api exited", err)
		os.Exit(1)
	}
}

// run keeps all bootstrap in one place so deferred closers fire on every
// exit path, including mid-bootstrap failures.
func run(logg *logger.Logger) error {
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	productsService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		return fmt.Errorf("build products service: %w", err)
	}
	promoService, err := promo.NewService(promo.NewRepository(dbClient.DB()))
	if err != nil {
		return fmt.Errorf("build promo service: %w", err)
	}

	shippingRule := pricing.ShippingRule{
		FlatFeePaisa:         cfg.Checkout.ShippingFeePaisa,
		FreeShippingMinPaisa: cfg.Checkout.FreeShippingMinPaisa,
	}
	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), dbClient, productsService, promoService, shippingRule)
	if err != nil {
		return fmt.Errorf("build cart service: %w", err)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService, productsService)
	if err != nil {
		return fmt.Errorf("build orders service: %w", err)
	}

	checkoutService, err := checkout.NewService(
		cartService,
		productsService,
		productsService,
		promoService,
		ordersRepo,
		outboxService,
		dbClient,
		cfg.Checkout,
	)
	if err != nil {
		return fmt.Errorf("build checkout service: %w", err)
	}

	// Address lookup is optional: without a maps key the routes stay unmounted
	// and the storefront falls back to manual address entry.
	var addressService address.Service
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			return fmt.Errorf("build maps client: %w", err)
		}
		addressService = address.NewService(mapsClient)
	} else {
		logg.Warn(context.Background(), "google maps api key not set, address lookup disabled")
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	id := env.Instance("local")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			cartService,
			checkoutService,
			ordersService,
			promoService,
			productsService,
			addressService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	logg.Info(ctx, "starting api server")

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("drain api server: %w", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
	return nil
}
