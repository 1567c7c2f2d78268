package facts

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rshade/adtech-emissions/internal/carbon"
)

// GeneralTemplate is the template recorded for facts whose document names none.
const GeneralTemplate = "GENERAL"

// Fact is one sourced value found in a data file.
type Fact struct {
	Company       string          `json:"company" yaml:"company"`
	URL           string          `json:"url" yaml:"url"`
	IsCalculation bool            `json:"is_calculation" yaml:"is_calculation"`
	Value         decimal.Decimal `json:"value" yaml:"value"`
	Template      string          `json:"template" yaml:"template"`
	Channel       string          `json:"channel,omitempty" yaml:"channel,omitempty"`
	Key           string          `json:"key" yaml:"key"`
}

// String formats the fact as company(channel template) key: value.
func (f Fact) String() string {
	calc := ""
	if f.IsCalculation {
		calc = " (calculation)"
	}
	return fmt.Sprintf("%s(%s%s)%s %s: %s", f.Company, f.Channel, f.Template, calc, f.Key, f.Value.String())
}

// Set groups facts by key.
type Set map[string][]Fact

func (s Set) add(f Fact) {
	s[f.Key] = append(s[f.Key], f)
}

// Keys returns the fact keys in lexical order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the total number of facts.
func (s Set) Len() int {
	n := 0
	for _, fs := range s {
		n += len(fs)
	}
	return n
}

var metadataKeys = map[string]struct{}{
	"reference": {},
	"comment":   {},
	"source_id": {},
}

func isMetadata(key string) bool {
	_, ok := metadataKeys[key]
	return ok
}

// RawFacts flattens a list of fact entries into one map. Metadata keys and
// the calculation marker are dropped. Later entries win.
func RawFacts(entries []any) map[string]any {
	out := make(map[string]any)
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			if isMetadata(k) || k == "calculation" {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Values converts the numeric entries of raw into carbon values. Non-numeric
// entries are reported as errors so a typo in a data file does not silently
// fall back to a default.
func Values(raw map[string]any) (carbon.Values, error) {
	out := make(carbon.Values, len(raw))
	for k, v := range raw {
		d, ok := AsDecimal(v)
		if !ok {
			return nil, fmt.Errorf("%w: fact %s is %T, want a number", carbon.ErrInvalidInput, k, v)
		}
		out[carbon.Field(k)] = d
	}
	return out, nil
}
