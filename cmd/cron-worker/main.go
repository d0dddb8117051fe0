package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/internal/audit"
	"github.com/olimjonn/warehub-backend/internal/billing"
	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/internal/cron"
	"github.com/olimjonn/warehub-backend/internal/identity"
	"github.com/olimjonn/warehub-backend/internal/notify"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db"
	"github.com/olimjonn/warehub-backend/pkg/logger"
	"github.com/olimjonn/warehub-backend/pkg/metrics"
	"github.com/olimjonn/warehub-backend/pkg/migrate"
	"github.com/olimjonn/warehub-backend/pkg/pubsub"
	"github.com/olimjonn/warehub-backend/pkg/redis"
)

const lockKeyFormat = "wh:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var notifier notify.Dispatcher = notify.NoopDispatcher{}
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		notifier = notify.NewPubSubDispatcher(pubsubClient.NotificationPublisher(), logg)
	}

	auditor := audit.NewRecorder(dbClient.DB(), logg)
	identityRepo := identity.NewRepository(dbClient.DB())
	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	autoBlockJob, err := cron.NewPaymentAutoBlockJob(cron.PaymentAutoBlockJobParams{
		Logger:      logg,
		DB:          dbClient,
		BillingRepo: billing.NewRepository(dbClient.DB()),
		BlockSetterFactory: func(tx *gorm.DB) billing.BlockSetter {
			return identityRepo.WithTx(tx)
		},
		Auditor:            auditor,
		Notifier:           notifier,
		Metrics:            metricsCollector,
		SubscriptionConfig: cfg.Subscription,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auto-block job", err)
		os.Exit(1)
	}

	lowStockJob, err := cron.NewLowStockJob(cron.LowStockJobParams{
		Logger:      logg,
		CatalogRepo: catalog.NewRepository(dbClient.DB()),
		Notifier:    notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create low-stock job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(autoBlockJob, lowStockJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Subscription.ScanInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
