package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Phone       *string        `json:"phone,omitempty"`
	CompanyName *string        `json:"company_name,omitempty"`
	Telegram    *string        `json:"telegram,omitempty"`
	Role        enums.RoleKind `json:"role"`
	WarehouseID *uuid.UUID     `json:"warehouse_id,omitempty"`
	IsActive    bool           `json:"is_active"`
	Blocked     bool           `json:"blocked"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FromModel maps a user plus their role into the transport shape.
func FromModel(u *models.User, role *models.Role) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		CompanyName: u.CompanyName,
		Telegram:    u.Telegram,
		IsActive:    u.IsActive,
		Blocked:     u.Blocked,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if role != nil {
		dto.Role = role.Kind
		dto.WarehouseID = role.WarehouseID
	}
	return dto
}

// LoginRequest carries credential input from the auth controller.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the minted token plus the actor's profile.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresAt   int64    `json:"expires_at"`
	User        *UserDTO `json:"user"`
}

// CreateManagerRequest registers a warehouse manager under a warehouse.
type CreateManagerRequest struct {
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=8"`
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	Phone       *string   `json:"phone,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
	Telegram    *string   `json:"telegram,omitempty"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
}

// CreateSellerRequest registers a seller under the creating manager's warehouse.
type CreateSellerRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Phone     *string `json:"phone,omitempty"`
}
