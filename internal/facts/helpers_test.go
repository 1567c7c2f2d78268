package facts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustDecimal(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	d, ok := AsDecimal(v)
	require.Truef(t, ok, "%v is %T, want decimal", v, v)
	return d
}
