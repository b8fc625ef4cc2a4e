package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cron"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/notifications"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/config"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/env"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/metrics"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/migrate"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/redis"
)

const lockKeyFormat = "lc:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})
	if err := run(logg); err != nil {
		logg.Error(context.Background(), "cron worker exited", err)
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
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)
	ordersRepo := orders.NewRepository(dbClient.DB())

	reminderJob, err := cron.NewPaymentReminderJob(cron.PaymentReminderJobParams{
		Logger: logg,
		DB:     dbClient,
		Orders: ordersRepo,
		Outbox: outboxService,
		After:  cfg.Cron.PaymentReminderAfter,
	})
	if err != nil {
		return fmt.Errorf("build payment reminder job: %w", err)
	}

	cartCleanupJob, err := cron.NewCartCleanupJob(cron.CartCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Carts:      cart.NewRepository(dbClient.DB()),
		Outbox:     outboxService,
		IdleWindow: cfg.Cron.CartIdleWindow,
	})
	if err != nil {
		return fmt.Errorf("build cart cleanup job: %w", err)
	}

	outboxRetentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetention,
	})
	if err != nil {
		return fmt.Errorf("build outbox retention job: %w", err)
	}

	notificationCleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(dbClient.DB()),
		Retention:  cfg.Cron.NotificationRetention,
	})
	if err != nil {
		return fmt.Errorf("build notification cleanup job: %w", err)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		return fmt.Errorf("build cron lock: %w", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reminderJob, cartCleanupJob, outboxRetentionJob, notificationCleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Tick,
	})
	if err != nil {
		return fmt.Errorf("build cron service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, logg, cfg)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("cron run: %w", err)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}

// serveMetrics exposes the job counters on the process port so the scrape
// target works the same way it does for the api binary.
func serveMetrics(ctx context.Context, logg *logger.Logger, cfg *config.Config) {
	port := env.Get("PORT", cfg.App.Port)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Warn(ctx, "metrics listener stopped: "+err.Error())
	}
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
