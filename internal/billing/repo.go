package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Repository defines persistence for subscription accounts and payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateAccount(ctx context.Context, account *models.SubscriptionAccount) error
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*models.SubscriptionAccount, error)
	ListAccounts(ctx context.Context) ([]models.SubscriptionAccount, error)
	ListUnblockedAccounts(ctx context.Context) ([]models.SubscriptionAccount, error)
	MarkWarned(ctx context.Context, id uuid.UUID, at time.Time) error
	Block(ctx context.Context, id uuid.UUID) (int64, error)
	ApplyPayment(ctx context.Context, id uuid.UUID, paidAt time.Time) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error)
	TransitionPayment(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (int64, error)
	SumPaidSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a billing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateAccount(ctx context.Context, account *models.SubscriptionAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*models.SubscriptionAccount, error) {
	var account models.SubscriptionAccount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListAccounts(ctx context.Context) ([]models.SubscriptionAccount, error) {
	var accounts []models.SubscriptionAccount
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListUnblockedAccounts returns the accounts the control loop must evaluate.
// Blocked accounts are terminal until a payment restores them.
func (r *repository) ListUnblockedAccounts(ctx context.Context) ([]models.SubscriptionAccount, error) {
	var accounts []models.SubscriptionAccount
	if err := r.db.WithContext(ctx).
		Where("blocked = ?", false).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) MarkWarned(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SubscriptionAccount{}).
		Where("id = ?", id).
		UpdateColumn("warned_at", at).Error
}

// Block flips the account to blocked, guarded so a payment racing the control
// loop wins: an account already unblocked-and-paid is left alone.
func (r *repository) Block(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionAccount{}).
		Where("id = ? AND blocked = ?", id, false).
		UpdateColumn("blocked", true)
	return result.RowsAffected, result.Error
}

// ApplyPayment restores the account: fresh payment clock, unblocked, warning
// marker cleared for the new cycle.
func (r *repository) ApplyPayment(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SubscriptionAccount{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"last_payment_at": paidAt,
			"blocked":         false,
			"warned_at":       nil,
		}).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListPayments(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var payments []models.Payment
	if err := q.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// TransitionPayment moves a payment between statuses with the previous status
// in the WHERE clause. Zero rows affected means someone else got there first.
func (r *repository) TransitionPayment(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	return result.RowsAffected, result.Error
}

func (r *repository) SumPaidSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ? AND updated_at >= ?", enums.PaymentStatusPaid, since).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
