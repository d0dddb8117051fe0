package enums

import "fmt"

// ProductUnit is the unit a product is counted in.
type ProductUnit string

const (
	UnitKilogram ProductUnit = "kg"
	UnitBox      ProductUnit = "box"
	UnitLiter    ProductUnit = "l"
	UnitMeter    ProductUnit = "m"
	UnitTon      ProductUnit = "ton"
	UnitPiece    ProductUnit = "piece"
	UnitPack     ProductUnit = "pack"
)

var validProductUnits = []ProductUnit{
	UnitKilogram,
	UnitBox,
	UnitLiter,
	UnitMeter,
	UnitTon,
	UnitPiece,
	UnitPack,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
