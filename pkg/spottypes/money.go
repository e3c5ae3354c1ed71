package spottypes

import "github.com/shopspring/decimal"

// Epsilon is the minimum trade size the match loop will act on (spec §4.5.2,
// §9). A would-be trade at or below this floor signals a precision bug
// upstream and aborts the loop rather than silently continuing. The one
// exception is in the market-order paths: when a leg's own remaining target
// is itself at or below Epsilon, that leg is marked Filled instead.
var Epsilon = decimal.New(1, -10) // 1e-10

// AboveEpsilon reports whether d is strictly greater than Epsilon.
func AboveEpsilon(d decimal.Decimal) bool {
	return d.GreaterThan(Epsilon)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d to zero if it would otherwise be negative. Used to
// floor available_balance per spec §3 ("available_balance = max(0, ...)").
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
