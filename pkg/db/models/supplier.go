package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a goods source referenced by products.
type Supplier struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	ContactInfo string    `gorm:"column:contact_info"`
	Address     string    `gorm:"column:address"`
	Phone       string    `gorm:"column:phone"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
