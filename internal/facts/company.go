package facts

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rshade/adtech-emissions/internal/carbon"
)

// Entries is a list of fact entries. Each entry maps fact keys to values,
// with numbers decoded as decimals.
type Entries []map[string]any

// UnmarshalYAML decodes the sequence with Decode's number handling.
func (e *Entries) UnmarshalYAML(n *yaml.Node) error {
	v, err := convertNode(n)
	if err != nil {
		return err
	}
	list, ok := v.([]any)
	if !ok && v != nil {
		return fmt.Errorf("line %d: facts must be a sequence", n.Line)
	}
	out := make(Entries, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("line %d: fact entry must be a mapping", n.Line)
		}
		out = append(out, m)
	}
	*e = out
	return nil
}

// Raw flattens the entries with RawFacts.
func (e Entries) Raw() map[string]any {
	list := make([]any, len(e))
	for i, m := range e {
		list[i] = m
	}
	return RawFacts(list)
}

// Values returns the numeric facts of the entries.
func (e Entries) Values() (carbon.Values, error) {
	return Values(e.Raw())
}

// Company is a company data file.
type Company struct {
	Name             string     `yaml:"name"`
	PublicIdentifier string     `yaml:"public_identifier"`
	Type             string     `yaml:"type"`
	Template         string     `yaml:"template"`
	Facts            Entries    `yaml:"facts"`
	Products         []Product  `yaml:"products"`
	Properties       []Property `yaml:"properties"`
}

// Product is an ad tech platform product declared by a company.
type Product struct {
	Name                              string               `yaml:"name"`
	Identifier                        string               `yaml:"identifier"`
	Template                          string               `yaml:"template"`
	AllocationOfCompanyServersPct     *decimal.Decimal     `yaml:"allocation_of_company_servers_pct"`
	AllocationOfCorporateEmissionsPct *decimal.Decimal     `yaml:"allocation_of_corporate_emissions_pct"`
	DatacenterRegion                  string               `yaml:"datacenter_region"`
	DistributionPartners              []carbon.PartnerEdge `yaml:"distribution_partners"`
	Facts                             Entries              `yaml:"facts"`
}

// Property is a publisher property declared by a company.
type Property struct {
	Identifier  string  `yaml:"identifier"`
	Template    string  `yaml:"template"`
	Channel     string  `yaml:"channel"`
	Environment string  `yaml:"environment"`
	GridRegion  string  `yaml:"grid_region"`
	Facts       Entries `yaml:"facts"`
}

// ReadCompany decodes a company file.
func ReadCompany(r io.Reader) (*Company, error) {
	var c Company
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty company file", carbon.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", carbon.ErrInvalidInput, err)
	}
	return &c, nil
}

// LoadCompany reads the company file at path.
func LoadCompany(path string) (*Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := ReadCompany(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Values returns the product facts with allocation percentages and the
// datacenter region applied. Missing percentages are 100. Unknown regions
// are an error.
func (p Product) Values() (carbon.Values, error) {
	v, err := p.Facts.Values()
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", p.Name, err)
	}
	if p.AllocationOfCompanyServersPct != nil {
		v[carbon.FieldAllocationOfCompanyServersPct] = *p.AllocationOfCompanyServersPct
	}
	if p.AllocationOfCorporateEmissionsPct != nil {
		v[carbon.FieldAllocationOfCorporateEmissionsPct] = *p.AllocationOfCorporateEmissionsPct
	}
	v.SetDefault(carbon.FieldAllocationOfCompanyServersPct, carbon.OneHundred)
	v.SetDefault(carbon.FieldAllocationOfCorporateEmissionsPct, carbon.OneHundred)
	if p.DatacenterRegion != "" && !carbon.ApplyGridRegion(v, carbon.FieldServerEmissionsPerKWh, p.DatacenterRegion) {
		return nil, fmt.Errorf("%w: product %s: unknown datacenter region %q", carbon.ErrInvalidInput, p.Name, p.DatacenterRegion)
	}
	return v, nil
}

// Validate checks the fields every product needs.
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product has no name", carbon.ErrInvalidInput)
	}
	if p.Template == "" {
		return fmt.Errorf("%w: product %s has no template", carbon.ErrInvalidInput, p.Name)
	}
	if p.Identifier == "" {
		return fmt.Errorf("%w: product %s has no identifier", carbon.ErrInvalidInput, p.Name)
	}
	return nil
}

// Values returns the property facts with the grid region applied.
func (p Property) Values() (carbon.Values, error) {
	v, err := p.Facts.Values()
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", p.Identifier, err)
	}
	if p.GridRegion != "" && !carbon.ApplyGridRegion(v, carbon.FieldGridIntensity, p.GridRegion) {
		return nil, fmt.Errorf("%w: property %s: unknown grid region %q", carbon.ErrInvalidInput, p.Identifier, p.GridRegion)
	}
	return v, nil
}

// Validate checks the fields every property needs.
func (p Property) Validate() error {
	if p.Identifier == "" || p.Template == "" {
		return fmt.Errorf("%w: each property must have an identifier and a template", carbon.ErrInvalidInput)
	}
	return nil
}

// ChannelOrDefault returns the property channel, display when unset.
func (p Property) ChannelOrDefault() (carbon.PropertyChannel, error) {
	if p.Channel == "" {
		return carbon.ChannelDisplay, nil
	}
	return carbon.ParsePropertyChannel(p.Channel)
}
