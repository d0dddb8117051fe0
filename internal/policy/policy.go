// Package policy is the single source of truth for role-based admission and
// warehouse-scoped visibility. Every controller consults it before touching
// state; nothing else in the codebase is allowed to hand-roll a role check.
package policy

import (
	"github.com/google/uuid"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"gorm.io/gorm"
)

// Action names every permission-gated operation in the system.
type Action string

const (
	// Admin-only actions.
	ActionWarehouseCreate  Action = "warehouse.create"
	ActionWarehouseUpdate  Action = "warehouse.update"
	ActionWarehouseDelete  Action = "warehouse.delete"
	ActionSupplierManage   Action = "supplier.manage"
	ActionSettingsManage   Action = "settings.manage"
	ActionBulkPriceUpdate  Action = "product.bulk_price_update"
	ActionBackupRestore    Action = "system.backup_restore"
	ActionPaymentConfirm   Action = "payment.confirm"
	ActionSubscriptionView Action = "subscription.view_all"

	// Manager-or-above actions.
	ActionProductCreate  Action = "product.create"
	ActionProductUpdate  Action = "product.update"
	ActionProductDelete  Action = "product.delete"
	ActionProductExport  Action = "product.export"
	ActionCategoryManage Action = "category.manage"
	ActionSellerManage   Action = "seller.manage"
	ActionDebtExport     Action = "debt.export"
	ActionDebtApprove    Action = "debt.approve"

	// Seller-or-above actions.
	ActionTakeProduct      Action = "product.take"
	ActionViewDashboard    Action = "dashboard.view"
	ActionViewProducts     Action = "product.view"
	ActionViewTransactions Action = "transaction.view"
	ActionViewDebts        Action = "debt.view"
	ActionDebtPay          Action = "debt.pay"

	ActionSubscriptionSelf Action = "subscription.self"
)

var adminOnly = map[Action]struct{}{
	ActionWarehouseCreate:  {},
	ActionWarehouseUpdate:  {},
	ActionWarehouseDelete:  {},
	ActionSupplierManage:   {},
	ActionSettingsManage:   {},
	ActionBulkPriceUpdate:  {},
	ActionBackupRestore:    {},
	ActionPaymentConfirm:   {},
	ActionSubscriptionView: {},
}

var managerOrAbove = map[Action]struct{}{
	ActionProductCreate:  {},
	ActionProductUpdate:  {},
	ActionProductDelete:  {},
	ActionProductExport:  {},
	ActionCategoryManage: {},
	ActionSellerManage:   {},
	ActionDebtExport:     {},
	ActionDebtApprove:    {},
}

var sellerOrAbove = map[Action]struct{}{
	ActionTakeProduct:      {},
	ActionViewDashboard:    {},
	ActionViewProducts:     {},
	ActionViewTransactions: {},
	ActionViewDebts:        {},
	ActionDebtPay:          {},
}

// Actor is the authenticated principal a request runs as.
type Actor struct {
	UserID      uuid.UUID
	Role        enums.RoleKind
	WarehouseID *uuid.UUID
	Blocked     bool
}

// Authenticated reports whether the actor carries a valid identity.
func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil && a.Role.IsValid()
}

// Authorize decides whether the actor may perform action, optionally against a
// specific warehouse. It is deterministic and has no side effects, so callers
// may invoke it before any state is touched.
//
// Scope mismatches surface as NotFound rather than Forbidden: a tenant must
// not be able to confirm that another tenant's resources exist.
func Authorize(actor Actor, action Action, targetWarehouse *uuid.UUID) error {
	if !actor.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	// Self-service billing is the one surface a blocked manager keeps:
	// submitting a payment is the only way out of a block.
	if action == ActionSubscriptionSelf {
		if actor.Role != enums.RoleWarehouseManager {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only managers hold subscriptions")
		}
		return nil
	}

	if actor.Blocked {
		return pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked due to unpaid subscription")
	}

	if _, ok := adminOnly[action]; ok {
		if actor.Role != enums.RoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
		}
		return nil
	}

	if _, ok := managerOrAbove[action]; ok {
		if actor.Role != enums.RoleAdmin && actor.Role != enums.RoleWarehouseManager {
			return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
		}
		return scopeCheck(actor, targetWarehouse)
	}

	if _, ok := sellerOrAbove[action]; ok {
		return scopeCheck(actor, targetWarehouse)
	}

	return pkgerrors.New(pkgerrors.CodeForbidden, "unknown action")
}

func scopeCheck(actor Actor, targetWarehouse *uuid.UUID) error {
	if actor.Role == enums.RoleAdmin {
		return nil
	}
	if targetWarehouse == nil {
		return nil
	}
	if actor.WarehouseID == nil || *actor.WarehouseID != *targetWarehouse {
		return pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	return nil
}

// ScopeFilter appends the actor's visibility predicate to a query. It must be
// applied at the query boundary so cross-tenant rows never reach pagination.
func ScopeFilter(actor Actor, column string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if actor.Role == enums.RoleAdmin {
			return q
		}
		if actor.WarehouseID == nil {
			// A scoped role without a warehouse can see nothing.
			return q.Where("1 = 0")
		}
		return q.Where(column+" = ?", *actor.WarehouseID)
	}
}

// VisibleWarehouse resolves which warehouse a scoped listing should run
// against: admins may ask for any warehouse, everyone else is pinned to their
// own regardless of what they requested.
func VisibleWarehouse(actor Actor, requested *uuid.UUID) *uuid.UUID {
	if actor.Role == enums.RoleAdmin {
		return requested
	}
	return actor.WarehouseID
}
