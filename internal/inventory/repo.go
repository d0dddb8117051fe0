package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	"github.com/olimjonn/warehub-backend/pkg/pagination"
)

// Repository defines persistence for the append-only transaction ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.Transaction) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*TransactionList, error)
	SummarizeSince(ctx context.Context, warehouseID *uuid.UUID, since time.Time) (*Summary, error)
	TopProducts(ctx context.Context, warehouseID *uuid.UUID, since time.Time, limit int) ([]ProductSales, error)
	SellerStats(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]SellerStat, error)
}

// Filters narrows transaction listings.
type Filters struct {
	WarehouseID *uuid.UUID
	ProductID   *uuid.UUID
	ActorID     *uuid.UUID
	Type        *enums.TransactionType
}

// TransactionList is one page of ledger rows plus the cursor for the next.
type TransactionList struct {
	Items      []models.Transaction `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// Summary aggregates ledger movement for dashboards.
type Summary struct {
	InboundQuantity  int64 `gorm:"column:inbound_quantity" json:"inbound_quantity"`
	SoldQuantity     int64 `gorm:"column:sold_quantity" json:"sold_quantity"`
	DamagedQuantity  int64 `gorm:"column:damaged_quantity" json:"damaged_quantity"`
	ExpiredQuantity  int64 `gorm:"column:expired_quantity" json:"expired_quantity"`
	TransactionCount int64 `gorm:"column:transaction_count" json:"transaction_count"`
}

// ProductSales is one row of the best-sellers ranking.
type ProductSales struct {
	ProductID    uuid.UUID       `gorm:"column:product_id" json:"product_id"`
	Name         string          `gorm:"column:name" json:"name"`
	QuantitySold int64           `gorm:"column:quantity_sold" json:"quantity_sold"`
	Revenue      decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

// SellerStat aggregates sales activity per seller.
type SellerStat struct {
	SellerID     uuid.UUID       `gorm:"column:seller_id" json:"seller_id"`
	FirstName    string          `gorm:"column:first_name" json:"first_name"`
	LastName     string          `gorm:"column:last_name" json:"last_name"`
	SalesCount   int64           `gorm:"column:sales_count" json:"sales_count"`
	QuantitySold int64           `gorm:"column:quantity_sold" json:"quantity_sold"`
	Revenue      decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*TransactionList, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filters.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filters.WarehouseID)
	}
	if filters.ProductID != nil {
		q = q.Where("product_id = ?", *filters.ProductID)
	}
	if filters.ActorID != nil {
		q = q.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.Type != nil {
		q = q.Where("type = ?", *filters.Type)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var items []models.Transaction
	if err := q.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&items).Error; err != nil {
		return nil, err
	}

	list := &TransactionList{Items: items}
	if len(items) > limit {
		list.Items = items[:limit]
		last := list.Items[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

// TopProducts ranks products by sold quantity over the period. Revenue uses
// the current product price; the ledger does not snapshot prices.
func (r *repository) TopProducts(ctx context.Context, warehouseID *uuid.UUID, since time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 5
	}
	q := r.db.WithContext(ctx).
		Table("transactions AS t").
		Select(`t.product_id,
			p.name,
			COALESCE(SUM(t.quantity), 0) AS quantity_sold,
			COALESCE(SUM(t.quantity * p.price), 0) AS revenue`).
		Joins("JOIN products p ON p.id = t.product_id").
		Where("t.type = ? AND t.created_at >= ?", enums.TransactionOutSale, since)
	if warehouseID != nil {
		q = q.Where("t.warehouse_id = ?", *warehouseID)
	}

	var rows []ProductSales
	if err := q.Group("t.product_id, p.name").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SellerStats(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]SellerStat, error) {
	q := r.db.WithContext(ctx).
		Table("transactions AS t").
		Select(`t.actor_id AS seller_id,
			u.first_name,
			u.last_name,
			COUNT(*) AS sales_count,
			COALESCE(SUM(t.quantity), 0) AS quantity_sold,
			COALESCE(SUM(t.quantity * p.price), 0) AS revenue`).
		Joins("JOIN users u ON u.id = t.actor_id").
		Joins("JOIN products p ON p.id = t.product_id").
		Where("t.type = ? AND t.created_at >= ?", enums.TransactionOutSale, since)
	if warehouseID != nil {
		q = q.Where("t.warehouse_id = ?", *warehouseID)
	}

	var rows []SellerStat
	if err := q.Group("t.actor_id, u.first_name, u.last_name").
		Order("quantity_sold DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SummarizeSince(ctx context.Context, warehouseID *uuid.UUID, since time.Time) (*Summary, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) AS inbound_quantity,
			COALESCE(SUM(CASE WHEN type = 'OUT_SALE' THEN quantity ELSE 0 END), 0) AS sold_quantity,
			COALESCE(SUM(CASE WHEN type = 'OUT_DAMAGED' THEN quantity ELSE 0 END), 0) AS damaged_quantity,
			COALESCE(SUM(CASE WHEN type = 'OUT_EXPIRED' THEN quantity ELSE 0 END), 0) AS expired_quantity,
			COUNT(*) AS transaction_count`).
		Where("created_at >= ?", since)
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}

	var summary Summary
	if err := q.Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
