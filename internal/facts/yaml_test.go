package facts

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(`
a: 0.1
b: 3
c: text
d: true
e: null
list: [1, 2.5]
nested:
  x: 1000
`))
	require.NoError(t, err)

	a, ok := AsDecimal(doc["a"])
	require.True(t, ok)
	assert.True(t, a.Equal(dec("0.1")))
	assert.Equal(t, "0.1", a.String())

	b, ok := AsDecimal(doc["b"])
	require.True(t, ok)
	assert.True(t, b.Equal(dec("3")))

	assert.Equal(t, "text", doc["c"])
	assert.Equal(t, true, doc["d"])
	assert.Nil(t, doc["e"])

	list, ok := doc["list"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.True(t, list[1].(decimal.Decimal).Equal(dec("2.5")))

	nested, ok := doc["nested"].(map[string]any)
	require.True(t, ok)
	assert.True(t, nested["x"].(decimal.Decimal).Equal(dec("1000")))
}

func TestDecodeEmpty(t *testing.T) {
	doc, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestDecodeRejectsSequence(t *testing.T) {
	_, err := Decode(strings.NewReader("- 1\n- 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want a mapping")
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("a: [1, 2"))
	require.Error(t, err)
}

func TestMarshal(t *testing.T) {
	type row struct {
		Name  string           `yaml:"name"`
		Value decimal.Decimal  `yaml:"value"`
		Extra *decimal.Decimal `yaml:"extra,omitempty"`
		Skip  string           `yaml:"-"`
	}
	extra := dec("2")
	out, err := Marshal(map[string]any{
		"rows": []row{
			{Name: "a", Value: dec("0.5")},
			{Name: "b", Value: dec("1").Div(dec("3")), Extra: &extra, Skip: "hidden"},
		},
		"count": 2,
	})
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "value: 0.500000000")
	assert.Contains(t, s, "value: 0.333333333")
	assert.Contains(t, s, "extra: 2.000000000")
	assert.Equal(t, 1, strings.Count(s, "extra:"))
	assert.NotContains(t, s, "hidden")
	assert.NotContains(t, s, "!!float")
	assert.Less(t, strings.Index(s, "count:"), strings.Index(s, "rows:"))

	back, err := Decode(strings.NewReader(s))
	require.NoError(t, err)
	rows := back["rows"].([]any)
	first := rows[0].(map[string]any)
	assert.True(t, first["value"].(decimal.Decimal).Equal(dec("0.5")))
}

func TestMarshalNil(t *testing.T) {
	out, err := Marshal(map[string]any{"missing": nil})
	require.NoError(t, err)
	assert.Equal(t, "missing: null\n", string(out))
}
