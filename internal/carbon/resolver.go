package carbon

import "github.com/shopspring/decimal"

// Resolver resolves model inputs from explicit facts with template defaults
// as the fallback.
//
// Priority order: explicit fact > template default (eligible fields only).
// A field with neither is a MissingValueError.
type Resolver struct {
	facts    Values
	defaults Values
	eligible FieldSet
	trace    *Trace
}

// NewResolver creates a resolver. Only defaults for eligible fields are kept.
// The maps are copied, so later changes by the caller are not observed.
func NewResolver(facts, defaults Values, eligible FieldSet, trace *Trace) *Resolver {
	return &Resolver{
		facts:    facts.Clone(),
		defaults: defaults.Only(eligible),
		eligible: eligible,
		trace:    trace,
	}
}

// Get returns the explicit value for f, or its template default.
func (r *Resolver) Get(f Field, depth int) (decimal.Decimal, error) {
	if v, ok := r.facts[f]; ok {
		r.trace.Step(depth, f, v, SourceFact)
		return v, nil
	}
	if v, ok := r.defaults[f]; ok {
		r.trace.Step(depth, f, v, SourceDefault)
		return v, nil
	}
	return decimal.Zero, &MissingValueError{Field: f}
}

// Lookup is Get without the error: ok is false when f cannot be resolved.
func (r *Resolver) Lookup(f Field, depth int) (decimal.Decimal, bool) {
	v, err := r.Get(f, depth)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// Fact returns the explicit value for f, ignoring defaults.
func (r *Resolver) Fact(f Field) (decimal.Decimal, bool) {
	v, ok := r.facts[f]
	return v, ok
}

// IsSet reports whether f has an explicit, non-zero value.
// Conditional branches of the models treat an absent and a zero value alike.
func (r *Resolver) IsSet(f Field) bool {
	v, ok := r.facts[f]
	return ok && !v.IsZero()
}

// Default returns the template default for f.
func (r *Resolver) Default(f Field) (decimal.Decimal, bool) {
	v, ok := r.defaults[f]
	return v, ok
}

// Trace returns the resolver's derivation trace, which may be nil.
func (r *Resolver) Trace() *Trace {
	return r.trace
}
