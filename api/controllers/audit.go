package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/api/responses"
	"github.com/olimjonn/warehub-backend/api/validators"
	"github.com/olimjonn/warehub-backend/internal/policy"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

type auditLister interface {
	List(ctx context.Context, warehouseID *uuid.UUID, limit int) ([]models.AuditLog, error)
}

// AuditList returns recent audit entries. Admin only.
func AuditList(recorder auditLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		if err := policy.Authorize(*actor, policy.ActionSettingsManage, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouseID, err := queryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := recorder.List(r.Context(), warehouseID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
