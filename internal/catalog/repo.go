package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
)

// Repository defines persistence for products, categories and suppliers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (int64, error)
	BulkAdjustPrices(ctx context.Context, warehouseID *uuid.UUID, factor decimal.Decimal) (int64, error)
	ListLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]models.Product, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}

// ProductFilters narrows product listings. WarehouseID is mandatory for
// non-admin callers; the service fills it from the actor's scope.
type ProductFilters struct {
	WarehouseID *uuid.UUID
	CategoryID  *uuid.UUID
	Search      string
	LowStock    bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filters.WarehouseID)
	}
	if filters.CategoryID != nil {
		q = q.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Search != "" {
		q = q.Where("name ILIKE ? OR barcode = ?", "%"+filters.Search+"%", filters.Search)
	}
	if filters.LowStock {
		q = q.Where("stock_quantity <= min_stock")
	}

	var products []models.Product
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// AdjustStock applies a stock delta with the non-negative guard inside the
// UPDATE itself. Zero rows affected means the product is missing or the
// decrement would have gone below zero; the caller decides which.
func (r *repository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", productID, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	return result.RowsAffected, result.Error
}

// BulkAdjustPrices multiplies prices by factor, optionally scoped to one
// warehouse.
func (r *repository) BulkAdjustPrices(ctx context.Context, warehouseID *uuid.UUID, factor decimal.Decimal) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}
	result := q.Update("price", gorm.Expr("round(price * ?, 2)", factor))
	return result.RowsAffected, result.Error
}

func (r *repository) ListLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Where("stock_quantity <= min_stock")
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}
	var products []models.Product
	if err := q.Order("stock_quantity ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repository) UpdateSupplier(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Supplier{}, "id = ?", id).Error
}
