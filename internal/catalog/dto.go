package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// CreateProductRequest carries product creation input.
type CreateProductRequest struct {
	Name        string            `json:"name" validate:"required"`
	CategoryID  uuid.UUID         `json:"category_id" validate:"required"`
	SupplierID  *uuid.UUID        `json:"supplier_id,omitempty"`
	WarehouseID uuid.UUID         `json:"warehouse_id" validate:"required"`
	Barcode     *string           `json:"barcode,omitempty"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price" validate:"required"`
	Unit        enums.ProductUnit `json:"unit"`
	MinStock    int               `json:"min_stock" validate:"gte=0"`
}

// UpdateProductRequest carries partial product updates.
type UpdateProductRequest struct {
	Name        *string            `json:"name,omitempty"`
	CategoryID  *uuid.UUID         `json:"category_id,omitempty"`
	SupplierID  *uuid.UUID         `json:"supplier_id,omitempty"`
	Barcode     *string            `json:"barcode,omitempty"`
	Description *string            `json:"description,omitempty"`
	Price       *decimal.Decimal   `json:"price,omitempty"`
	Unit        *enums.ProductUnit `json:"unit,omitempty"`
	MinStock    *int               `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
}

// BulkPriceUpdateRequest multiplies prices by a percentage change.
type BulkPriceUpdateRequest struct {
	WarehouseID *uuid.UUID      `json:"warehouse_id,omitempty"`
	Factor      decimal.Decimal `json:"factor" validate:"required"`
}

// CreateCategoryRequest carries category creation input.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateSupplierRequest carries supplier creation input.
type CreateSupplierRequest struct {
	Name        string `json:"name" validate:"required"`
	ContactInfo string `json:"contact_info"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

// UpdateSupplierRequest carries partial supplier updates.
type UpdateSupplierRequest struct {
	Name        *string `json:"name,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}
