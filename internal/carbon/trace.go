package carbon

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Source values recorded on derivation steps.
const (
	SourceFact        = "fact"
	SourceDefault     = "default"
	SourceCalculation = "calculation"
)

// Trace records how each quantity of a model was derived.
// A nil *Trace discards everything, so models never need to check for one.
type Trace struct {
	logger zerolog.Logger
}

// NewTrace returns a Trace that writes derivation steps to logger at debug level.
func NewTrace(logger zerolog.Logger) *Trace {
	return &Trace{logger: logger}
}

// Step records a resolved input.
func (t *Trace) Step(depth int, field Field, value decimal.Decimal, source string) {
	if t == nil {
		return
	}
	t.logger.Debug().
		Int("depth", depth).
		Str("field", string(field)).
		Str("value", value.String()).
		Str("source", source).
		Msg("resolved")
}

// Result records a computed intermediate or final quantity.
func (t *Trace) Result(depth int, name string, value decimal.Decimal) {
	if t == nil {
		return
	}
	t.logger.Debug().
		Int("depth", depth).
		Str("quantity", name).
		Str("value", value.String()).
		Str("source", SourceCalculation).
		Msg("computed")
}

// Section marks the start of a modeled entity, such as one product or property.
func (t *Trace) Section(name string) {
	if t == nil {
		return
	}
	t.logger.Debug().Str("entity", name).Msg("modeling")
}
