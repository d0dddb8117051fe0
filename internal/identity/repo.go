package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
)

// Repository defines user and role persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateUser(ctx context.Context, user *models.User) error
	CreateRole(ctx context.Context, role *models.Role) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RoleFor(ctx context.Context, userID uuid.UUID) (*models.Role, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error
	SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error
	SetBlockedForWarehouseSellers(ctx context.Context, warehouseID uuid.UUID, blocked bool) (int64, error)
	ListSellers(ctx context.Context, warehouseID uuid.UUID) ([]SellerRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an identity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) CreateRole(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) RoleFor(ctx context.Context, userID uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *repository) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("is_active", active).Error
}

func (r *repository) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("blocked", blocked).Error
}

// SetBlockedForWarehouseSellers flips the blocked flag on every seller scoped
// to the given warehouse. Used by the subscription block/unblock cascade.
func (r *repository) SetBlockedForWarehouseSellers(ctx context.Context, warehouseID uuid.UUID, blocked bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN (?)", r.db.
			Model(&models.Role{}).
			Select("user_id").
			Where("kind = ? AND warehouse_id = ?", enums.RoleSeller, warehouseID)).
		UpdateColumn("blocked", blocked)
	return result.RowsAffected, result.Error
}

func (r *repository) ListSellers(ctx context.Context, warehouseID uuid.UUID) ([]SellerRow, error) {
	var rows []SellerRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, roles.warehouse_id AS role_warehouse_id, roles.created_by_user_id").
		Joins("JOIN roles ON roles.user_id = users.id").
		Where("roles.kind = ? AND roles.warehouse_id = ?", enums.RoleSeller, warehouseID).
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SellerRow is the join shape returned by ListSellers.
type SellerRow struct {
	models.User
	RoleWarehouseID uuid.UUID  `gorm:"column:role_warehouse_id"`
	CreatedByUserID *uuid.UUID `gorm:"column:created_by_user_id"`
}
