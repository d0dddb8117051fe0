package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Transaction is an append-only stock movement record. Rows are never
// updated or deleted after creation.
type Transaction struct {
	ID           uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	WarehouseID  uuid.UUID             `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Type         enums.TransactionType `gorm:"column:type;type:text;not null"`
	Quantity     int                   `gorm:"column:quantity;not null"`
	ActorID      uuid.UUID             `gorm:"column:actor_id;type:uuid;not null"`
	PaymentType  enums.PaymentType     `gorm:"column:payment_type;type:text;not null;default:'CASH'"`
	CustomerName string                `gorm:"column:customer_name"`
	Description  string                `gorm:"column:description"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
