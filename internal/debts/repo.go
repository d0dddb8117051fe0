package debts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Repository defines debt persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, debt *models.Debt) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Debt, error)
	List(ctx context.Context, filters Filters) ([]models.Debt, error)
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (int64, error)
	OutstandingTotal(ctx context.Context, warehouseID *uuid.UUID) (decimal.Decimal, error)
}

// Filters narrows debt listings.
type Filters struct {
	WarehouseID *uuid.UUID
	SellerID    *uuid.UUID
	Status      *enums.DebtStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a debts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, debt *models.Debt) error {
	return r.db.WithContext(ctx).Create(debt).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	var debt models.Debt
	if err := r.db.WithContext(ctx).First(&debt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]models.Debt, error) {
	q := r.db.WithContext(ctx).Model(&models.Debt{})
	if filters.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filters.WarehouseID)
	}
	if filters.SellerID != nil {
		q = q.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}

	var debts []models.Debt
	if err := q.Order("created_at DESC").Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// ApplyPayment moves paid_amount and recomputes status in a single guarded
// UPDATE so two concurrent payments can never push a debt past its total.
// Zero rows affected means the debt is missing, already settled, or the
// payment would overshoot the remaining balance.
func (r *repository) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE debts
		 SET paid_amount = paid_amount + ?,
		     status = CASE
		         WHEN paid_amount + ? >= total_amount THEN 'PAID'
		         ELSE 'PARTIAL'
		     END,
		     updated_at = now()
		 WHERE id = ?
		   AND status <> 'PAID'
		   AND paid_amount + ? <= total_amount`,
		amount, amount, id, amount,
	)
	return result.RowsAffected, result.Error
}

func (r *repository) OutstandingTotal(ctx context.Context, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.Debt{}).
		Select("COALESCE(SUM(total_amount - paid_amount), 0)").
		Where("status <> ?", enums.DebtStatusPaid)
	if warehouseID != nil {
		q = q.Where("warehouse_id = ?", *warehouseID)
	}

	var total decimal.Decimal
	if err := q.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
