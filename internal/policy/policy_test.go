package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func admin() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func manager(warehouse uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleWarehouseManager, WarehouseID: ptr(warehouse)}
}

func seller(warehouse uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleSeller, WarehouseID: ptr(warehouse)}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestAuthorize_UnauthenticatedDenied(t *testing.T) {
	err := Authorize(Actor{}, ActionViewProducts, nil)
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAuthorize_BlockedActorDenied(t *testing.T) {
	wh := uuid.New()
	actor := manager(wh)
	actor.Blocked = true
	err := Authorize(actor, ActionViewProducts, ptr(wh))
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestAuthorize_AdminOnlyActions(t *testing.T) {
	wh := uuid.New()
	for _, action := range []Action{ActionWarehouseCreate, ActionSupplierManage, ActionBulkPriceUpdate, ActionPaymentConfirm} {
		if err := Authorize(admin(), action, nil); err != nil {
			t.Fatalf("admin denied %s: %v", action, err)
		}
		assertCode(t, Authorize(manager(wh), action, ptr(wh)), pkgerrors.CodeForbidden)
		assertCode(t, Authorize(seller(wh), action, ptr(wh)), pkgerrors.CodeForbidden)
	}
}

func TestAuthorize_ManagerOrAboveActions(t *testing.T) {
	wh := uuid.New()
	for _, action := range []Action{ActionProductCreate, ActionCategoryManage, ActionSellerManage, ActionDebtExport} {
		if err := Authorize(admin(), action, ptr(wh)); err != nil {
			t.Fatalf("admin denied %s: %v", action, err)
		}
		if err := Authorize(manager(wh), action, ptr(wh)); err != nil {
			t.Fatalf("manager denied %s in own warehouse: %v", action, err)
		}
		assertCode(t, Authorize(seller(wh), action, ptr(wh)), pkgerrors.CodeForbidden)
	}
}

func TestAuthorize_SellerOrAboveActions(t *testing.T) {
	wh := uuid.New()
	for _, action := range []Action{ActionTakeProduct, ActionViewDashboard, ActionViewProducts} {
		if err := Authorize(seller(wh), action, ptr(wh)); err != nil {
			t.Fatalf("seller denied %s in own warehouse: %v", action, err)
		}
	}
}

// Scope mismatches must read as NotFound so one tenant cannot probe another's
// resources, even for actions the role would otherwise allow.
func TestAuthorize_ScopeMismatchIsNotFound(t *testing.T) {
	mine := uuid.New()
	other := uuid.New()

	assertCode(t, Authorize(manager(mine), ActionProductCreate, ptr(other)), pkgerrors.CodeNotFound)
	assertCode(t, Authorize(seller(mine), ActionViewProducts, ptr(other)), pkgerrors.CodeNotFound)
}

func TestAuthorize_AdminBypassesScope(t *testing.T) {
	if err := Authorize(admin(), ActionViewTransactions, ptr(uuid.New())); err != nil {
		t.Fatalf("admin denied cross-warehouse view: %v", err)
	}
}

func TestAuthorize_ScopedRoleWithoutWarehouseSeesNothing(t *testing.T) {
	actor := Actor{UserID: uuid.New(), Role: enums.RoleSeller}
	assertCode(t, Authorize(actor, ActionViewProducts, ptr(uuid.New())), pkgerrors.CodeNotFound)
}

func TestVisibleWarehouse(t *testing.T) {
	mine := uuid.New()
	other := uuid.New()

	if got := VisibleWarehouse(admin(), ptr(other)); got == nil || *got != other {
		t.Fatal("admin should see the requested warehouse")
	}
	if got := VisibleWarehouse(manager(mine), ptr(other)); got == nil || *got != mine {
		t.Fatal("manager must be pinned to their own warehouse")
	}
	if got := VisibleWarehouse(seller(mine), nil); got == nil || *got != mine {
		t.Fatal("seller defaults to their own warehouse")
	}
}

func TestAuthorize_BlockedManagerKeepsSubscriptionSelfService(t *testing.T) {
	wh := uuid.New()
	actor := manager(wh)
	actor.Blocked = true

	if err := Authorize(actor, ActionSubscriptionSelf, nil); err != nil {
		t.Fatalf("blocked manager must keep the payment path: %v", err)
	}
	// Everything else stays closed while blocked.
	assertCode(t, Authorize(actor, ActionViewProducts, ptr(wh)), pkgerrors.CodeForbidden)
}

func TestAuthorize_SubscriptionSelfServiceManagerOnly(t *testing.T) {
	wh := uuid.New()
	assertCode(t, Authorize(admin(), ActionSubscriptionSelf, nil), pkgerrors.CodeForbidden)
	assertCode(t, Authorize(seller(wh), ActionSubscriptionSelf, nil), pkgerrors.CodeForbidden)
	if err := Authorize(manager(wh), ActionSubscriptionSelf, nil); err != nil {
		t.Fatalf("manager denied self service: %v", err)
	}
}
