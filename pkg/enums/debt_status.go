package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DebtStatus reflects how much of a debt has been repaid.
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "PENDING"
	DebtStatusPartial DebtStatus = "PARTIAL"
	DebtStatusPaid    DebtStatus = "PAID"
)

var validDebtStatuses = []DebtStatus{
	DebtStatusPending,
	DebtStatusPartial,
	DebtStatusPaid,
}

// String implements fmt.Stringer.
func (d DebtStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DebtStatus.
func (d DebtStatus) IsValid() bool {
	for _, candidate := range validDebtStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// DebtStatusFor derives status from the paid and total amounts. Status is a
// pure function of the two amounts, never stored independently of them.
func DebtStatusFor(paid, total decimal.Decimal) DebtStatus {
	if paid.GreaterThanOrEqual(total) {
		return DebtStatusPaid
	}
	if paid.GreaterThan(decimal.Zero) {
		return DebtStatusPartial
	}
	return DebtStatusPending
}

// ParseDebtStatus converts raw input into a DebtStatus.
func ParseDebtStatus(value string) (DebtStatus, error) {
	for _, candidate := range validDebtStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid debt status %q", value)
}
