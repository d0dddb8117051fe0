package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only trail of policy-gated actions and control-loop
// transitions.
type AuditLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID     *uuid.UUID `gorm:"column:actor_id;type:uuid;index"`
	Action      string     `gorm:"column:action;type:text;not null"`
	WarehouseID *uuid.UUID `gorm:"column:warehouse_id;type:uuid"`
	IPAddress   *string    `gorm:"column:ip_address"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
