package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.RoleKind
	WarehouseID *uuid.UUID
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. The actor's
// role and warehouse scope are resolved once at login and travel with the
// token; handlers never look them up dynamically.
type AccessTokenClaims struct {
	UserID      uuid.UUID      `json:"user_id"`
	Role        enums.RoleKind `json:"role"`
	WarehouseID *uuid.UUID     `json:"warehouse_id,omitempty"`
	jwt.RegisteredClaims
}
