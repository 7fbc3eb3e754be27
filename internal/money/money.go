package money

import "github.com/shopspring/decimal"

// Tolerance is the absolute difference below which two currency amounts are
// treated as equal. Every balance comparison in the engine goes through this
// package; nothing compares raw amounts for equality.
var Tolerance = decimal.New(1, -2) // 0.01

// Equal reports whether a and b are within Tolerance of each other.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// IsZero reports whether the amount is too small to matter, i.e. strictly
// below Tolerance in magnitude.
func IsZero(a decimal.Decimal) bool {
	return a.Abs().LessThan(Tolerance)
}

// Round normalizes an amount to 2 decimal places.
func Round(a decimal.Decimal) decimal.Decimal {
	return a.Round(2)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
