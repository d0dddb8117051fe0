package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/olimjonn/warehub-backend/api/routes"
	"github.com/olimjonn/warehub-backend/internal/audit"
	"github.com/olimjonn/warehub-backend/internal/billing"
	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/internal/debts"
	"github.com/olimjonn/warehub-backend/internal/identity"
	"github.com/olimjonn/warehub-backend/internal/inventory"
	"github.com/olimjonn/warehub-backend/internal/notify"
	"github.com/olimjonn/warehub-backend/internal/warehouses"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db"
	"github.com/olimjonn/warehub-backend/pkg/logger"
	"github.com/olimjonn/warehub-backend/pkg/migrate"
	"github.com/olimjonn/warehub-backend/pkg/pubsub"
	"github.com/olimjonn/warehub-backend/pkg/redis"
	"gorm.io/gorm"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	billingRepo := billing.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	debtsRepo := debts.NewRepository(dbClient.DB())

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:     billingRepo,
		TxRunner: dbClient,
		BlockSetterFactory: func(tx *gorm.DB) billing.BlockSetter {
			return identityRepo.WithTx(tx)
		},
		Auditor:            auditor,
		Notifier:           notifier,
		SubscriptionConfig: cfg.Subscription,
		BillingConfig:      cfg.Billing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	identityService, err := identity.NewService(identity.ServiceParams{
		Repo:           identityRepo,
		TxRunner:       dbClient,
		Enroller:       billingService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	warehouseService, err := warehouses.NewService(warehouses.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:        inventoryRepo,
		CatalogRepo: catalogRepo,
		DebtsRepo:   debtsRepo,
		TxRunner:    dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	debtsService, err := debts.NewService(debtsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create debts service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Users:     identityRepo,
			Identity:  identityService,
			Warehouse: warehouseService,
			Catalog:   catalogService,
			Inventory: inventoryService,
			Debts:     debtsService,
			Billing:   billingService,
			Auditor:   auditor,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
