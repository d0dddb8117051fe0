package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Product is warehouse-scoped inventory. StockQuantity is only ever mutated
// through the conditional-update path in the catalog repository.
type Product struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string            `gorm:"column:name;not null"`
	CategoryID    uuid.UUID         `gorm:"column:category_id;type:uuid;not null"`
	SupplierID    *uuid.UUID        `gorm:"column:supplier_id;type:uuid"`
	WarehouseID   uuid.UUID         `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Barcode       *string           `gorm:"column:barcode;uniqueIndex"`
	Description   string            `gorm:"column:description"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Unit          enums.ProductUnit `gorm:"column:unit;type:text;not null;default:'piece'"`
	MinStock      int               `gorm:"column:min_stock;not null;default:0"`
	StockQuantity int               `gorm:"column:stock_quantity;not null;default:0"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLowStock reports whether the product is at or below its reorder floor.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStock
}
