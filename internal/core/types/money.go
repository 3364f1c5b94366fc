// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Tolerances used by statement validation. Trial balance and balance sheet
// totals must agree within a cent; the cash flow cross-check allows a full
// currency unit to absorb rounding across three sections.
var (
	BalanceTolerance  = decimal.RequireFromString("0.01")
	CashFlowTolerance = decimal.RequireFromString("1")
)

// WithinTolerance reports whether a and b differ by no more than tol.
func WithinTolerance(a, b, tol Money) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// SumMoney adds a slice of Money values.
func SumMoney(values []Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
