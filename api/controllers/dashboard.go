package controllers

import (
	"net/http"
	"time"

	"github.com/olimjonn/warehub-backend/api/responses"
	"github.com/olimjonn/warehub-backend/api/validators"
	"github.com/olimjonn/warehub-backend/internal/billing"
	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/internal/debts"
	"github.com/olimjonn/warehub-backend/internal/inventory"
	"github.com/olimjonn/warehub-backend/internal/policy"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

// DashboardServices groups the read models the dashboard aggregates.
type DashboardServices struct {
	Inventory inventory.Service
	Debts     debts.Service
	Catalog   catalog.Service
	Billing   billing.Service
}

// Dashboard aggregates movement, debt and stock figures for the visible
// warehouse, plus the subscription countdown for managers.
func Dashboard(services DashboardServices, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		requested, err := queryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouseID := policy.VisibleWarehouse(*actor, requested)
		if err := policy.Authorize(*actor, policy.ActionViewDashboard, warehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		days, err := validators.ParseQueryInt(r, "period_days", 30, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		since := time.Now().AddDate(0, 0, -days)

		summary, err := services.Inventory.SummarizeSince(r.Context(), warehouseID, since)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outstanding, err := services.Debts.OutstandingTotal(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowStock, err := services.Catalog.ListLowStock(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		topProducts, err := services.Inventory.TopProducts(r.Context(), warehouseID, since, 5)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{
			"period_days":      days,
			"movement":         summary,
			"outstanding_debt": outstanding,
			"low_stock_count":  len(lowStock),
			"top_products":     topProducts,
		}
		if actor.Role != enums.RoleSeller {
			sellerStats, err := services.Inventory.SellerStats(r.Context(), warehouseID, since)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			payload["seller_stats"] = sellerStats
		}
		if actor.Role == enums.RoleWarehouseManager {
			if status, err := services.Billing.Status(r.Context(), actor.UserID); err == nil {
				payload["subscription"] = status
			}
		}
		if actor.Role == enums.RoleAdmin {
			revenue, err := services.Billing.RevenueSince(r.Context(), since)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			payload["subscription_revenue"] = revenue
		}
		responses.WriteSuccess(w, payload)
	}
}
