package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Debt tracks an unpaid or partially paid sale by a seller.
type Debt struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index"`
	ProductID   uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	WarehouseID uuid.UUID        `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Quantity    int              `gorm:"column:quantity;not null"`
	TotalAmount decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaidAmount  decimal.Decimal  `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	Status      enums.DebtStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining returns the amount still owed.
func (d Debt) Remaining() decimal.Decimal {
	return d.TotalAmount.Sub(d.PaidAmount)
}
