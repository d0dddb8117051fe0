package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/api/responses"
	"github.com/olimjonn/warehub-backend/api/validators"
	"github.com/olimjonn/warehub-backend/internal/inventory"
	"github.com/olimjonn/warehub-backend/internal/policy"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/logger"
	"github.com/olimjonn/warehub-backend/pkg/pagination"
)

type recordTransactionRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	Type         string    `json:"type" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	PaymentType  string    `json:"payment_type"`
	CustomerName string    `json:"customer_name"`
	Description  string    `json:"description"`
}

// TransactionRecord moves stock: goods in, sales out, damage/expiry
// write-offs. The policy action depends on direction.
func TransactionRecord(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body recordTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txType, err := enums.ParseTransactionType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}
		paymentType := enums.PaymentTypeCash
		if body.PaymentType != "" {
			paymentType, err = enums.ParsePaymentType(body.PaymentType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
				return
			}
		}

		action := policy.ActionTakeProduct
		if txType.IsInbound() {
			action = policy.ActionProductUpdate
		}
		if err := policy.Authorize(*actor, action, actor.WarehouseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tx, err := svc.Record(r.Context(), inventory.RecordInput{
			ProductID:        body.ProductID,
			Type:             txType,
			Quantity:         body.Quantity,
			PaymentType:      paymentType,
			CustomerName:     body.CustomerName,
			Description:      body.Description,
			ActorID:          actor.UserID,
			ActorWarehouseID: policy.VisibleWarehouse(*actor, nil),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tx)
	}
}

// TransactionList pages through the ledger, newest first.
func TransactionList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionViewTransactions, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requested, err := queryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := queryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := inventory.Filters{
			WarehouseID: policy.VisibleWarehouse(*actor, requested),
			ProductID:   productID,
		}
		if raw := r.URL.Query().Get("type"); raw != "" {
			txType, err := enums.ParseTransactionType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
				return
			}
			filters.Type = &txType
		}
		// Sellers see only their own movements.
		if actor.Role == enums.RoleSeller {
			actorID := actor.UserID
			filters.ActorID = &actorID
		}

		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
