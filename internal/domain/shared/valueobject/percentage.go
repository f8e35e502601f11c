package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percentage is a rate expressed in percent (20 means 20%).
// The upper bound is a business rule, not a type rule: fees, discounts and doctor
// shares above 100 are representable and left for the caller's policy to judge.
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage creates a Percentage, rejecting negative values
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() {
		return Percentage{}, fmt.Errorf("percentage cannot be negative: %s", value.String())
	}
	return Percentage{value: value}, nil
}

// MustPercentage creates a Percentage from an int, panicking on negative input.
// Intended for constants and tests.
func MustPercentage(value int64) Percentage {
	p, err := NewPercentage(decimal.NewFromInt(value))
	if err != nil {
		panic(err)
	}
	return p
}

// ZeroPercentage returns 0%
func ZeroPercentage() Percentage {
	return Percentage{value: decimal.Zero}
}

// Value returns the percent value (20 for 20%)
func (p Percentage) Value() decimal.Decimal {
	return p.value
}

// Of returns amount*p/100. Shifting the exponent keeps the result exact.
func (p Percentage) Of(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.value).Shift(-2)
}

// Exceeds reports whether the percentage is strictly above limit
func (p Percentage) Exceeds(limit decimal.Decimal) bool {
	return p.value.GreaterThan(limit)
}

// IsZero returns true for 0%
func (p Percentage) IsZero() bool {
	return p.value.IsZero()
}

// String returns e.g. "12.5%"
func (p Percentage) String() string {
	return p.value.String() + "%"
}
