package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olimjonn/warehub-backend/api/controllers"
	"github.com/olimjonn/warehub-backend/api/middleware"
	"github.com/olimjonn/warehub-backend/internal/audit"
	"github.com/olimjonn/warehub-backend/internal/billing"
	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/internal/debts"
	"github.com/olimjonn/warehub-backend/internal/identity"
	"github.com/olimjonn/warehub-backend/internal/inventory"
	"github.com/olimjonn/warehub-backend/internal/warehouses"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/logger"
	"github.com/olimjonn/warehub-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

// Params carries everything the router mounts.
type Params struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        pinger
	Redis     *redis.Client
	Users     middleware.UserLoader
	Identity  identity.Service
	Warehouse warehouses.Service
	Catalog   catalog.Service
	Inventory inventory.Service
	Debts     debts.Service
	Billing   billing.Service
	Auditor   *audit.Recorder
}

// NewRouter wires the HTTP surface: health, login, then the authenticated
// tree. Blocked actors are cut off everywhere except payment submission.
func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": p.DB,
			"redis":    p.Redis,
		}))
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
		Post("/api/v1/auth/login", controllers.AuthLogin(p.Identity, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Users, logg))

		// Payment submission stays reachable for blocked managers.
		r.Post("/subscription/payments", controllers.SubscriptionSubmitPayment(p.Billing, logg))
		r.Get("/subscription/payments", controllers.SubscriptionListPayments(p.Billing, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUnblocked(logg))

			r.Get("/me", controllers.Profile(p.Identity, logg))
			r.Get("/dashboard", controllers.Dashboard(controllers.DashboardServices{
				Inventory: p.Inventory,
				Debts:     p.Debts,
				Catalog:   p.Catalog,
				Billing:   p.Billing,
			}, logg))

			r.Route("/warehouses", func(r chi.Router) {
				r.Post("/", controllers.WarehouseCreate(p.Warehouse, logg))
				r.Get("/", controllers.WarehouseList(p.Warehouse, logg))
				r.Get("/{warehouseId}", controllers.WarehouseGet(p.Warehouse, logg))
				r.Put("/{warehouseId}", controllers.WarehouseUpdate(p.Warehouse, logg))
				r.Delete("/{warehouseId}", controllers.WarehouseDelete(p.Warehouse, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(p.Catalog, logg))
				r.Get("/", controllers.ProductList(p.Catalog, logg))
				r.Get("/low-stock", controllers.ProductLowStock(p.Catalog, logg))
				r.Post("/bulk-price", controllers.ProductBulkPriceUpdate(p.Catalog, logg))
				r.Get("/{productId}", controllers.ProductGet(p.Catalog, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(p.Catalog, logg))
				r.Delete("/{productId}", controllers.ProductDelete(p.Catalog, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.CategoryCreate(p.Catalog, logg))
				r.Get("/", controllers.CategoryList(p.Catalog, logg))
				r.Delete("/{categoryId}", controllers.CategoryDelete(p.Catalog, logg))
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Post("/", controllers.SupplierCreate(p.Catalog, logg))
				r.Get("/", controllers.SupplierList(p.Catalog, logg))
				r.Patch("/{supplierId}", controllers.SupplierUpdate(p.Catalog, logg))
				r.Delete("/{supplierId}", controllers.SupplierDelete(p.Catalog, logg))
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", controllers.TransactionRecord(p.Inventory, logg))
				r.Get("/", controllers.TransactionList(p.Inventory, logg))
			})

			r.Route("/debts", func(r chi.Router) {
				r.Get("/", controllers.DebtList(p.Debts, logg))
				r.Get("/outstanding", controllers.DebtOutstanding(p.Debts, logg))
				r.Get("/{debtId}", controllers.DebtGet(p.Debts, logg))
				r.Post("/pay", controllers.DebtPay(p.Debts, logg))
			})

			r.Route("/managers", func(r chi.Router) {
				r.Post("/", controllers.CreateManager(p.Identity, logg))
			})

			r.Route("/sellers", func(r chi.Router) {
				r.Post("/", controllers.CreateSeller(p.Identity, logg))
				r.Get("/", controllers.ListSellers(p.Identity, logg))
				r.Post("/{sellerId}/active", controllers.SetSellerActive(p.Identity, logg))
			})

			r.Get("/subscription/status", controllers.SubscriptionStatus(p.Billing, logg))
			r.Get("/subscription/accounts", controllers.AdminListAccounts(p.Billing, logg))
			r.Post("/subscription/payments/{paymentId}/confirm", controllers.AdminConfirmPayment(p.Billing, logg))
			r.Post("/subscription/payments/{paymentId}/reject", controllers.AdminRejectPayment(p.Billing, logg))

			r.Get("/audit", controllers.AuditList(p.Auditor, logg))
		})
	})

	return r
}
