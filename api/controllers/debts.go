package controllers

import (
	"net/http"

	"github.com/olimjonn/warehub-backend/api/responses"
	"github.com/olimjonn/warehub-backend/api/validators"
	"github.com/olimjonn/warehub-backend/internal/debts"
	"github.com/olimjonn/warehub-backend/internal/policy"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

func DebtList(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionViewDebts, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requested, err := queryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters := debts.Filters{WarehouseID: policy.VisibleWarehouse(*actor, requested)}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseDebtStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid debt status"))
				return
			}
			filters.Status = &status
		}
		if actor.Role == enums.RoleSeller {
			sellerID := actor.UserID
			filters.SellerID = &sellerID
		}
		list, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func DebtGet(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionViewDebts, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "debtId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		debt, err := svc.Get(r.Context(), policy.VisibleWarehouse(*actor, nil), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debt)
	}
}

// DebtPay applies a repayment against an open debt.
func DebtPay(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionDebtPay, actor.WarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body debts.PayRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		debt, err := svc.Pay(r.Context(), policy.VisibleWarehouse(*actor, nil), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debt)
	}
}

// DebtOutstanding reports the remaining debt total for the visible scope.
func DebtOutstanding(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionViewDebts, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requested, err := queryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total, err := svc.OutstandingTotal(r.Context(), policy.VisibleWarehouse(*actor, requested))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"outstanding_total": total})
	}
}
