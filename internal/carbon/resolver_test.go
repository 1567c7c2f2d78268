package carbon

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Priority(t *testing.T) {
	eligible := NewFieldSet(FieldDrawWatts, FieldProductionEmissionsPerDurationS)
	facts := Values{FieldDrawWatts: dec("10"), FieldLoadTimeS: dec("0")}
	defaults := Values{
		FieldDrawWatts:                       dec("53.2"),
		FieldProductionEmissionsPerDurationS: dec("0.007"),
		FieldPageSizeMB:                      dec("3"),
	}
	r := NewResolver(facts, defaults, eligible, nil)

	tests := []struct {
		name    string
		field   Field
		want    string
		wantErr bool
	}{
		{name: "fact wins over default", field: FieldDrawWatts, want: "10"},
		{name: "eligible default", field: FieldProductionEmissionsPerDurationS, want: "0.007"},
		{name: "explicit zero is a value", field: FieldLoadTimeS, want: "0"},
		{name: "non-eligible default ignored", field: FieldPageSizeMB, wantErr: true},
		{name: "absent everywhere", field: FieldVisitsPerMonth, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Get(tt.field, 0)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingValue)
				var missing *MissingValueError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tt.field, missing.Field)
				_, ok := r.Lookup(tt.field, 0)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestResolver_IsSet(t *testing.T) {
	r := NewResolver(Values{
		FieldLoadTimeS:  dec("0"),
		FieldPageSizeMB: dec("2.5"),
	}, Values{FieldDrawWatts: dec("1")}, NewFieldSet(FieldDrawWatts), nil)

	assert.False(t, r.IsSet(FieldLoadTimeS), "zero counts as unset")
	assert.True(t, r.IsSet(FieldPageSizeMB))
	assert.False(t, r.IsSet(FieldVisitsPerMonth))
	assert.False(t, r.IsSet(FieldDrawWatts), "defaults are not explicit")
}

func TestResolver_CopiesInputs(t *testing.T) {
	facts := Values{FieldDrawWatts: dec("1")}
	r := NewResolver(facts, nil, NewFieldSet(), nil)
	facts[FieldDrawWatts] = dec("2")

	got, err := r.Get(FieldDrawWatts, 0)
	require.NoError(t, err)
	assertDecimal(t, "1", got)
}

func TestResolver_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	r := NewResolver(
		Values{FieldDrawWatts: dec("10")},
		Values{FieldProductionEmissionsPerDurationS: dec("0.007")},
		EndUserDeviceFields,
		NewTrace(logger),
	)

	_, err := r.Get(FieldDrawWatts, 2)
	require.NoError(t, err)
	_, err = r.Get(FieldProductionEmissionsPerDurationS, 1)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"field":"draw_watts"`)
	assert.Contains(t, out, `"source":"fact"`)
	assert.Contains(t, out, `"source":"default"`)
	assert.Contains(t, out, `"depth":2`)
}

func TestTrace_NilIsNoop(t *testing.T) {
	var tr *Trace
	assert.NotPanics(t, func() {
		tr.Step(0, FieldDrawWatts, dec("1"), SourceFact)
		tr.Result(0, "x", dec("1"))
		tr.Section("x")
	})
}
