package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionAccount exists once per warehouse manager. A nil LastPaymentAt
// means payment has never been recorded and the account is treated as due.
// WarnedAt dedupes the day-before-block warning within a single due cycle.
type SubscriptionAccount struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	WarehouseID   uuid.UUID       `gorm:"column:warehouse_id;type:uuid;not null;index"`
	MonthlyAmount decimal.Decimal `gorm:"column:monthly_amount;type:numeric(12,2);not null"`
	LastPaymentAt *time.Time      `gorm:"column:last_payment_at"`
	Blocked       bool            `gorm:"column:blocked;not null;default:false"`
	WarnedAt      *time.Time      `gorm:"column:warned_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
