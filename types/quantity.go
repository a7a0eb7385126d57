// Package types provides common types used across Tally.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Quantity represents an amount of a physical consumable tagged with its
// unit of measure. Arithmetic between quantities requires matching units.
//
// Examples:
//   - Shots(2)            = 2 espresso shots
//   - Cups(1)             = 1 cup
//   - Of(1.5, "liter")    = 1.5 liters
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"` // lowercase: "shot", "cup", "unit", "liter", "kg"
}

// Common unit constructors

// Shots creates a Quantity measured in espresso shots.
func Shots(n float64) Quantity { return Quantity{Amount: n, Unit: "shot"} }

// Cups creates a Quantity measured in cups.
func Cups(n float64) Quantity { return Quantity{Amount: n, Unit: "cup"} }

// Units creates a Quantity measured in generic units.
func Units(n float64) Quantity { return Quantity{Amount: n, Unit: "unit"} }

// Of creates a Quantity with an arbitrary unit.
func Of(n float64, unit string) Quantity {
	return Quantity{Amount: n, Unit: strings.ToLower(unit)}
}

// ZeroOf returns a zero Quantity in the specified unit.
func ZeroOf(unit string) Quantity { return Quantity{Amount: 0, Unit: strings.ToLower(unit)} }

// Arithmetic operations

// Add adds two Quantity values. Panics if units don't match.
func (q Quantity) Add(other Quantity) Quantity {
	q.assertSameUnit(other)
	return Quantity{Amount: q.Amount + other.Amount, Unit: q.Unit}
}

// Subtract subtracts another Quantity value. Panics if units don't match.
func (q Quantity) Subtract(other Quantity) Quantity {
	q.assertSameUnit(other)
	return Quantity{Amount: q.Amount - other.Amount, Unit: q.Unit}
}

// Multiply scales the Quantity by a factor.
func (q Quantity) Multiply(factor float64) Quantity {
	return Quantity{Amount: q.Amount * factor, Unit: q.Unit}
}

// Negate returns the negative of the Quantity.
func (q Quantity) Negate() Quantity {
	return Quantity{Amount: -q.Amount, Unit: q.Unit}
}

// Abs returns the absolute value.
func (q Quantity) Abs() Quantity {
	if q.Amount < 0 {
		return Quantity{Amount: -q.Amount, Unit: q.Unit}
	}
	return q
}

// Clamp returns the Quantity floored at zero.
func (q Quantity) Clamp() Quantity {
	if q.Amount < 0 {
		return Quantity{Amount: 0, Unit: q.Unit}
	}
	return q
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (q Quantity) IsZero() bool { return q.Amount == 0 }

// IsPositive returns true if the amount is greater than zero.
func (q Quantity) IsPositive() bool { return q.Amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (q Quantity) IsNegative() bool { return q.Amount < 0 }

// Equal returns true if both quantities are equal (same amount and unit).
func (q Quantity) Equal(other Quantity) bool {
	return q.Amount == other.Amount && q.Unit == other.Unit
}

// LessThan returns true if this Quantity is less than other. Panics if units don't match.
func (q Quantity) LessThan(other Quantity) bool {
	q.assertSameUnit(other)
	return q.Amount < other.Amount
}

// GreaterThan returns true if this Quantity is greater than other. Panics if units don't match.
func (q Quantity) GreaterThan(other Quantity) bool {
	q.assertSameUnit(other)
	return q.Amount > other.Amount
}

// String returns a human-readable string like "2 shot" or "1.5 liter".
func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", trimFloat(q.Amount), q.Unit)
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount  float64 `json:"amount"`
		Unit    string  `json:"unit"`
		Display string  `json:"display"`
	}{
		Amount:  q.Amount,
		Unit:    q.Unit,
		Display: q.String(),
	})
}

// Helper functions

// assertSameUnit panics if units don't match.
func (q Quantity) assertSameUnit(other Quantity) {
	if q.Unit != other.Unit {
		panic(fmt.Sprintf("quantity: unit mismatch: %s != %s", q.Unit, other.Unit))
	}
}

// trimFloat formats a float without trailing zeros ("2" not "2.000000").
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// SumQuantities calculates the sum of multiple quantities. All must share a unit.
func SumQuantities(values ...Quantity) Quantity {
	if len(values) == 0 {
		return Quantity{}
	}

	result := values[0]
	for i := 1; i < len(values); i++ {
		result = result.Add(values[i])
	}
	return result
}
