package carbon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// assertDecimal compares got to want after rounding got to the precision of want.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	w := dec(want)
	places := -w.Exponent()
	if places < 0 {
		places = 0
	}
	assert.Truef(t, w.Equal(got.Round(places)), "want %s, got %s (%v)", want, got.String(), msgAndArgs)
}
