package carbon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// div returns a / b with DivisionPrecision fractional digits.
// Division by zero returns ErrDivisionByZero instead of panicking.
func div(a, b decimal.Decimal, what string) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrDivisionByZero, what)
	}
	return a.DivRound(b, DivisionPrecision), nil
}

// rate converts a percentage to a rate in [0, 1].
func rate(pct decimal.Decimal) decimal.Decimal {
	return pct.DivRound(OneHundred, DivisionPrecision)
}

// blockRate is the share of traffic that does not come from a source,
// given the percentage that does.
func blockRate(pct decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(rate(pct))
}

// ptr returns a pointer to d for optional output fields.
func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// FormatDecimal formats d for display. Integral values are formatted without
// a fractional part; everything else keeps up to nine places.
func FormatDecimal(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.Round(9).String()
}
