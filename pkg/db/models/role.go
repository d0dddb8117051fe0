package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Role assigns exactly one role to a user. Non-admin roles carry the
// warehouse they are scoped to; admins are global and carry none.
type Role struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Kind            enums.RoleKind `gorm:"column:kind;type:text;not null"`
	WarehouseID     *uuid.UUID     `gorm:"column:warehouse_id;type:uuid"`
	CreatedByUserID *uuid.UUID     `gorm:"column:created_by_user_id;type:uuid"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
}
