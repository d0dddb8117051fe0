package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
)

// Service defines catalog behavior for products, categories and suppliers.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID) error
	BulkPriceUpdate(ctx context.Context, req BulkPriceUpdateRequest) (int64, error)
	ListLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]models.Product, error)

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*models.Supplier, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	unit := req.Unit
	if unit == "" {
		unit = enums.UnitPiece
	}
	if !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown unit %q", unit))
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
		Barcode:     req.Barcode,
		Description: req.Description,
		Price:       req.Price,
		Unit:        unit,
		MinStock:    req.MinStock,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return product, nil
}

// GetProduct loads a product. A non-nil warehouseID pins the lookup to that
// warehouse; out-of-scope products read as absent.
func (s *service) GetProduct(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if warehouseID != nil && product.WarehouseID != *warehouseID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID, req UpdateProductRequest) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, warehouseID, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.Barcode != nil {
		updates["barcode"] = *req.Barcode
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Unit != nil {
		if !req.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown unit %q", *req.Unit))
		}
		updates["unit"] = *req.Unit
	}
	if req.MinStock != nil {
		updates["min_stock"] = *req.MinStock
	}
	if len(updates) == 0 {
		return s.GetProduct(ctx, warehouseID, id)
	}

	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return s.GetProduct(ctx, warehouseID, id)
}

func (s *service) DeleteProduct(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, warehouseID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

// BulkPriceUpdate multiplies product prices by the provided factor, e.g. 1.10
// for a 10% raise. Admin only.
func (s *service) BulkPriceUpdate(ctx context.Context, req BulkPriceUpdateRequest) (int64, error) {
	if !req.Factor.IsPositive() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "factor must be positive")
	}
	// A factor above 10x is almost certainly a fat-fingered percent value.
	if req.Factor.GreaterThan(decimal.NewFromInt(10)) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "factor out of range")
	}
	affected, err := s.repo.BulkAdjustPrices(ctx, req.WarehouseID, req.Factor)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bulk price update")
	}
	return affected, nil
}

func (s *service) ListLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]models.Product, error) {
	products, err := s.repo.ListLowStock(ctx, warehouseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing low stock")
	}
	return products, nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categories, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	return nil
}

func (s *service) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*models.Supplier, error) {
	supplier := &models.Supplier{
		Name:        strings.TrimSpace(req.Name),
		ContactInfo: req.ContactInfo,
		Address:     req.Address,
		Phone:       req.Phone,
	}
	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating supplier")
	}
	return supplier, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing suppliers")
	}
	return suppliers, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*models.Supplier, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ContactInfo != nil {
		updates["contact_info"] = *req.ContactInfo
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateSupplier(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating supplier")
		}
	}
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading supplier")
	}
	for i := range suppliers {
		if suppliers[i].ID == id {
			return &suppliers[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
}

func (s *service) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting supplier")
	}
	return nil
}
