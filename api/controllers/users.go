package controllers

import (
	"net/http"
	"strconv"

	"github.com/olimjonn/warehub-backend/api/responses"
	"github.com/olimjonn/warehub-backend/api/validators"
	"github.com/olimjonn/warehub-backend/internal/identity"
	"github.com/olimjonn/warehub-backend/internal/policy"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

// CreateManager registers a warehouse manager and enrolls their subscription.
// Admin only.
func CreateManager(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionSettingsManage, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body identity.CreateManagerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CreateManager(r.Context(), actor.UserID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// CreateSeller registers a seller in the caller's warehouse.
func CreateSeller(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionSellerManage, actor.WarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.WarehouseID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "caller has no warehouse scope"))
			return
		}
		var body identity.CreateSellerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CreateSeller(r.Context(), actor.UserID, *actor.WarehouseID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// ListSellers lists the sellers of the caller's warehouse.
func ListSellers(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := policy.Authorize(*actor, policy.ActionSellerManage, warehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if warehouseID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "warehouse_id is required"))
			return
		}
		sellers, err := svc.ListSellers(r.Context(), *warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sellers)
	}
}

// SetSellerActive toggles a seller's active flag within the caller's scope.
func SetSellerActive(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionSellerManage, actor.WarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellerID, err := pathUUID(r, "sellerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := strconv.ParseBool(r.URL.Query().Get("active"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "active must be true or false"))
			return
		}
		requested, err := queryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouseID := policy.VisibleWarehouse(*actor, requested)
		if warehouseID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "warehouse_id is required"))
			return
		}
		if err := svc.SetSellerActive(r.Context(), *warehouseID, sellerID, active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"seller_id": sellerID, "is_active": active})
	}
}
