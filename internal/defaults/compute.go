package defaults

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/facts"
)

// Model types that defaults can be computed for.
const (
	ModelOrganization = "organization"
	ModelProperty     = "property"
	ModelATP          = "atp"
)

// Source labels for values that do not come from facts.
const (
	SourceTemplateDefault = "template default"
	SourceGlobalDefault   = "global default"
)

// Models lists the model types in the order compute-defaults writes them.
var Models = []string{ModelOrganization, ModelProperty, ModelATP}

// globalDefaults apply to any model when neither facts nor the template
// provide a value.
var globalDefaults = carbon.Values{
	carbon.FieldBidRequestSizeBytes:        carbon.GlobalBidRequestSizeBytes,
	carbon.FieldBidRequestDistributionRate: carbon.GlobalBidRequestDistributionRate,
}

// ModelFields returns the default-eligible fields of a model type.
func ModelFields(model string) (carbon.FieldSet, error) {
	switch model {
	case ModelOrganization:
		return carbon.CorporateEligibleFields, nil
	case ModelProperty:
		return carbon.PropertyEligibleFields, nil
	case ModelATP:
		s := carbon.NewFieldSet(carbon.FieldBidRequestDistributionRate)
		for f := range carbon.AdTechPlatformEligibleFields {
			s[f] = struct{}{}
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown model %q", carbon.ErrInvalidInput, model)
}

// Template is a template file: which model it belongs to, which facts it
// averages and the values it overrides.
type Template struct {
	Name      string
	Type      string
	Template  string
	Channel   string
	Overrides carbon.Values
}

// matches reports whether a fact was recorded against this template.
func (t Template) matches(f facts.Fact) bool {
	if f.Template != t.Template {
		return false
	}
	return t.Channel == "" || f.Channel == t.Channel
}

// LoadTemplates reads every template file matching pattern in fsys. Templates
// are keyed by name and type.
func LoadTemplates(fsys fs.FS, pattern string) (map[string]Template, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Template, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, err
		}
		t, err := parseTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		out[t.Name+"-"+t.Type] = t
	}
	return out, nil
}

func parseTemplate(data []byte) (Template, error) {
	doc, err := facts.Decode(bytes.NewReader(data))
	if err != nil {
		return Template{}, err
	}
	raw, ok := doc["template"].(map[string]any)
	if !ok {
		return Template{}, fmt.Errorf("%w: 'template' field not found", carbon.ErrInvalidInput)
	}
	t := Template{Overrides: make(carbon.Values)}
	for k, v := range raw {
		switch k {
		case "name":
			t.Name = fmt.Sprint(v)
		case "type":
			t.Type = fmt.Sprint(v)
		case "template":
			t.Template = fmt.Sprint(v)
		case "channel":
			t.Channel = fmt.Sprint(v)
		default:
			if d, ok := facts.AsDecimal(v); ok {
				t.Overrides[carbon.Field(k)] = d
			}
		}
	}
	if t.Name == "" {
		return Template{}, fmt.Errorf("%w: 'name' field not found", carbon.ErrInvalidInput)
	}
	if t.Type == "" {
		return Template{}, fmt.Errorf("%w: 'type' field not found", carbon.ErrInvalidInput)
	}
	if t.Template == "" {
		t.Template = t.Name
	}
	return t, nil
}

// Averages holds per-field fact averages with the facts behind them.
type Averages struct {
	Values  carbon.Values
	Sources map[carbon.Field][]facts.Fact
}

// BuildAverages averages the facts of every field in fields, once across all
// facts and once across the facts recorded against tpl.
func BuildAverages(tpl Template, set facts.Set, fields carbon.FieldSet) (all, specific Averages) {
	all = Averages{Values: make(carbon.Values), Sources: make(map[carbon.Field][]facts.Fact)}
	specific = Averages{Values: make(carbon.Values), Sources: make(map[carbon.Field][]facts.Fact)}
	for key, list := range set {
		f := carbon.Field(key)
		if !fields.Has(f) || len(list) == 0 {
			continue
		}
		sum, tsum := decimal.Zero, decimal.Zero
		var matched []facts.Fact
		for _, fact := range list {
			sum = sum.Add(fact.Value)
			if tpl.matches(fact) {
				tsum = tsum.Add(fact.Value)
				matched = append(matched, fact)
			}
		}
		all.Values[f] = sum.DivRound(decimal.NewFromInt(int64(len(list))), carbon.DivisionPrecision)
		all.Sources[f] = list
		if len(matched) > 0 {
			specific.Values[f] = tsum.DivRound(decimal.NewFromInt(int64(len(matched))), carbon.DivisionPrecision)
			specific.Sources[f] = matched
		}
	}
	return all, specific
}

// Computed is the result of computing defaults for one model type, keyed by
// template name.
type Computed struct {
	Defaults map[string]carbon.Values             `yaml:"defaults"`
	Sources  map[string]map[carbon.Field][]string `yaml:"sources"`
}

// Compute derives defaults for every template of model. For each field the
// first available value wins: the template-specific fact average, the
// template override, the average across all facts, then the global default.
func Compute(model string, templates map[string]Template, set facts.Set) (Computed, error) {
	fields, err := ModelFields(model)
	if err != nil {
		return Computed{}, err
	}
	out := Computed{
		Defaults: make(map[string]carbon.Values),
		Sources:  make(map[string]map[carbon.Field][]string),
	}
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		tpl := templates[k]
		if tpl.Type != model {
			continue
		}
		all, specific := BuildAverages(tpl, set, fields)
		values := make(carbon.Values)
		sources := make(map[carbon.Field][]string)
		for _, f := range fields.Sorted() {
			if v, ok := specific.Values[f]; ok {
				values[f] = v
				sources[f] = describe(specific.Sources[f])
			} else if v, ok := tpl.Overrides[f]; ok {
				values[f] = v
				sources[f] = []string{SourceTemplateDefault}
			} else if v, ok := all.Values[f]; ok {
				values[f] = v
				sources[f] = describe(all.Sources[f])
			} else if v, ok := globalDefaults[f]; ok {
				values[f] = v
				sources[f] = []string{SourceGlobalDefault}
			}
		}
		out.Defaults[tpl.Name] = values
		out.Sources[tpl.Name] = sources
	}
	return out, nil
}

func describe(list []facts.Fact) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.String()
	}
	return out
}

// YAML renders the computed defaults as a defaults document with a sources
// section.
func (c Computed) YAML() ([]byte, error) {
	return facts.Marshal(c)
}
