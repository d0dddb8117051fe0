package enums

import "fmt"

// RoleKind represents the single role assigned to a user.
type RoleKind string

const (
	RoleAdmin            RoleKind = "ADMIN"
	RoleWarehouseManager RoleKind = "WAREHOUSE_MANAGER"
	RoleSeller           RoleKind = "SELLER"
)

var validRoleKinds = []RoleKind{
	RoleAdmin,
	RoleWarehouseManager,
	RoleSeller,
}

// String implements fmt.Stringer.
func (r RoleKind) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RoleKind.
func (r RoleKind) IsValid() bool {
	for _, candidate := range validRoleKinds {
		if candidate == r {
			return true
		}
	}
	return false
}

// RequiresWarehouse reports whether the role must be scoped to a warehouse.
func (r RoleKind) RequiresWarehouse() bool {
	return r == RoleWarehouseManager || r == RoleSeller
}

// ParseRoleKind converts raw input into a RoleKind.
func ParseRoleKind(value string) (RoleKind, error) {
	for _, candidate := range validRoleKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role kind %q", value)
}
