// Package controllers binds HTTP requests to domain services: decode, resolve
// the actor, authorize, delegate. No business rules live here.
package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/api/middleware"
	"github.com/olimjonn/warehub-backend/api/responses"
	"github.com/olimjonn/warehub-backend/internal/policy"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*policy.Actor, bool) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return nil, false
	}
	return actor, true
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}
