package enums

import "fmt"

// TransactionType classifies a stock movement.
type TransactionType string

const (
	TransactionIn         TransactionType = "IN"
	TransactionOutSale    TransactionType = "OUT_SALE"
	TransactionOutDamaged TransactionType = "OUT_DAMAGED"
	TransactionOutExpired TransactionType = "OUT_EXPIRED"
)

var validTransactionTypes = []TransactionType{
	TransactionIn,
	TransactionOutSale,
	TransactionOutDamaged,
	TransactionOutExpired,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsInbound reports whether the movement increases stock.
func (t TransactionType) IsInbound() bool {
	return t == TransactionIn
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
