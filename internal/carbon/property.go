package carbon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PropertyEligibleFields are the property inputs that fall back to the
// channel's generic template defaults.
var PropertyEligibleFields = NewFieldSet(
	FieldQualityImpressionsPerDurationS,
	FieldComputerActiveWatts,
	FieldComputerIdleWatts,
	FieldTVActiveWatts,
	FieldTVIdleWatts,
	FieldMobileActiveWatts,
	FieldMobileIdleWatts,
	FieldServersProcessingBidRequestsPct,
	FieldEndUserDataTransferKWhPerGB,
	FieldCoreInternetDataTransferKWhPerGB,
	FieldCorporateEmissionsPerImpression,
)

// PropertyFields is every numeric input accepted by the property model.
var PropertyFields = func() FieldSet {
	s := NewFieldSet(
		FieldGridIntensity,
		FieldVisitsPerMonth,
		FieldAverageVisitDurationS,
		FieldPagesPerVisit,
		FieldLoadTimeS,
		FieldPageSizeMB,
	)
	for f := range PropertyEligibleFields {
		s[f] = struct{}{}
	}
	return s
}()

var environmentWatts = map[Environment][2]Field{
	EnvironmentComputer: {FieldComputerActiveWatts, FieldComputerIdleWatts},
	EnvironmentMobile:   {FieldMobileActiveWatts, FieldMobileIdleWatts},
	EnvironmentTV:       {FieldTVActiveWatts, FieldTVIdleWatts},
}

// ModeledProperty is a modeled media property: a web site, mobile app or
// CTV channel. The electricity and client device values are only present
// when the property has a load time.
type ModeledProperty struct {
	Identifier                       string           `json:"identifier" yaml:"identifier"`
	Impressions                      decimal.Decimal  `json:"impressions" yaml:"impressions"`
	DataTransferElectricityKWh       *decimal.Decimal `json:"data_transfer_electricity_kwh,omitempty" yaml:"data_transfer_electricity_kwh,omitempty"`
	PageLoadElectricityKWh           *decimal.Decimal `json:"page_load_electricity_kwh,omitempty" yaml:"page_load_electricity_kwh,omitempty"`
	ClientDeviceEmissionsPerImpG     *decimal.Decimal `json:"client_device_emissions_g_co2e_per_imp,omitempty" yaml:"client_device_emissions_g_co2e_per_imp,omitempty"`
	CorporateEmissionsPerImpressionG *decimal.Decimal `json:"corporate_emissions_g_co2e_per_impression,omitempty" yaml:"corporate_emissions_g_co2e_per_impression,omitempty"`
}

// Property models the client-side emissions of a publisher property.
type Property struct {
	r   *Resolver
	env Environment
}

// NewProperty creates a property model. A zero environment means computer and
// a missing grid intensity means DefaultGridIntensity.
func NewProperty(env Environment, facts, defaults Values, trace *Trace) (*Property, error) {
	if env == "" {
		env = EnvironmentComputer
	}
	if _, ok := environmentWatts[env]; !ok {
		return nil, fmt.Errorf("%w: unknown environment %q", ErrInvalidInput, env)
	}
	f := facts.Clone()
	f.SetDefault(FieldGridIntensity, DefaultGridIntensity)
	return &Property{r: NewResolver(f, defaults, PropertyEligibleFields, trace), env: env}, nil
}

// AdsPerVisit returns the quality impressions served during an average visit.
func (p *Property) AdsPerVisit(depth int) (decimal.Decimal, error) {
	duration, err := p.r.Get(FieldAverageVisitDurationS, depth)
	if err != nil {
		return decimal.Zero, err
	}
	perSecond, err := p.r.Get(FieldQualityImpressionsPerDurationS, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return duration.Mul(perSecond), nil
}

// Impressions returns monthly impressions.
func (p *Property) Impressions(depth int) (decimal.Decimal, error) {
	visits, err := p.r.Get(FieldVisitsPerMonth, depth)
	if err != nil {
		return decimal.Zero, err
	}
	ads, err := p.AdsPerVisit(depth)
	if err != nil {
		return decimal.Zero, err
	}
	return visits.Mul(ads), nil
}

// ActivePageLoadTime returns seconds per visit spent loading pages.
func (p *Property) ActivePageLoadTime(depth int) (decimal.Decimal, error) {
	pages, err := p.r.Get(FieldPagesPerVisit, depth)
	if err != nil {
		return decimal.Zero, err
	}
	load, err := p.r.Get(FieldLoadTimeS, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return pages.Mul(load), nil
}

// BrowseTime returns seconds per visit not spent loading pages.
func (p *Property) BrowseTime(depth int) (decimal.Decimal, error) {
	duration, err := p.r.Get(FieldAverageVisitDurationS, depth)
	if err != nil {
		return decimal.Zero, err
	}
	active, err := p.ActivePageLoadTime(depth)
	if err != nil {
		return decimal.Zero, err
	}
	return duration.Sub(active), nil
}

// PageLoadEnergyWh returns device energy per visit in watt-hours, using the
// active and idle draw of the property's environment.
func (p *Property) PageLoadEnergyWh(depth int) (decimal.Decimal, error) {
	fields := environmentWatts[p.env]
	activeWatts, err := p.r.Get(fields[0], depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	idleWatts, err := p.r.Get(fields[1], depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	active, err := p.ActivePageLoadTime(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	browse, err := p.BrowseTime(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	wh := active.Mul(activeWatts).Add(browse.Mul(idleWatts)).DivRound(SecondsPerHour, DivisionPrecision)
	p.r.trace.Result(depth, "page load electricity wh", wh)
	return wh, nil
}

// PageLoadElectricityKWhPerImp returns page load electricity per impression.
func (p *Property) PageLoadElectricityKWhPerImp(depth int) (decimal.Decimal, error) {
	wh, err := p.PageLoadEnergyWh(depth)
	if err != nil {
		return decimal.Zero, err
	}
	ads, err := p.AdsPerVisit(depth)
	if err != nil {
		return decimal.Zero, err
	}
	return div(wh.DivRound(OneThousand, DivisionPrecision), ads, "ads per visit")
}

// DataTransferMBPerImp returns page weight per impression in megabytes.
func (p *Property) DataTransferMBPerImp(depth int) (decimal.Decimal, error) {
	size, err := p.r.Get(FieldPageSizeMB, depth)
	if err != nil {
		return decimal.Zero, err
	}
	ads, err := p.AdsPerVisit(depth)
	if err != nil {
		return decimal.Zero, err
	}
	return div(size, ads, "ads per visit")
}

// ElectricityPerMB returns end-user plus core internet electricity per MB.
func (p *Property) ElectricityPerMB(depth int) (decimal.Decimal, error) {
	endUser, err := p.r.Get(FieldEndUserDataTransferKWhPerGB, depth)
	if err != nil {
		return decimal.Zero, err
	}
	core, err := p.r.Get(FieldCoreInternetDataTransferKWhPerGB, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return endUser.DivRound(MBPerGB, DivisionPrecision).Add(core.DivRound(MBPerGB, DivisionPrecision)), nil
}

// DataTransferElectricityKWh returns data transfer electricity per impression.
func (p *Property) DataTransferElectricityKWh(depth int) (decimal.Decimal, error) {
	perMB, err := p.ElectricityPerMB(depth)
	if err != nil {
		return decimal.Zero, err
	}
	mb, err := p.DataTransferMBPerImp(depth)
	if err != nil {
		return decimal.Zero, err
	}
	return perMB.Mul(mb), nil
}

// ClientDeviceEmissionsPerImp returns grams CO2e per impression for the
// device and network electricity of the visit.
func (p *Property) ClientDeviceEmissionsPerImp(depth int) (decimal.Decimal, error) {
	grid, err := p.r.Get(FieldGridIntensity, depth)
	if err != nil {
		return decimal.Zero, err
	}
	dataTransfer, err := p.DataTransferElectricityKWh(depth)
	if err != nil {
		return decimal.Zero, err
	}
	pageLoad, err := p.PageLoadElectricityKWhPerImp(depth)
	if err != nil {
		return decimal.Zero, err
	}
	return grid.Mul(dataTransfer.Add(pageLoad)), nil
}

// Model models the property. Impressions are always computed.
func (p *Property) Model(identifier string, depth int) (ModeledProperty, error) {
	p.r.trace.Section(identifier)

	impressions, err := p.Impressions(depth)
	if err != nil {
		return ModeledProperty{}, err
	}
	p.r.trace.Result(depth, "impressions per month", impressions)
	out := ModeledProperty{Identifier: identifier, Impressions: impressions}

	if p.r.IsSet(FieldLoadTimeS) {
		pageLoad, err := p.PageLoadElectricityKWhPerImp(depth)
		if err != nil {
			return ModeledProperty{}, err
		}
		p.r.trace.Result(depth, "page_load_electricity_kwh", pageLoad)

		dataTransfer, err := p.DataTransferElectricityKWh(depth)
		if err != nil {
			return ModeledProperty{}, err
		}
		p.r.trace.Result(depth, "data_transfer_electricity_kwh", dataTransfer)

		grid, err := p.r.Get(FieldGridIntensity, depth)
		if err != nil {
			return ModeledProperty{}, err
		}
		client := grid.Mul(dataTransfer.Add(pageLoad))
		p.r.trace.Result(depth, "client_device_emissions_g_co2e_per_impression", client)

		out.PageLoadElectricityKWh = ptr(pageLoad)
		out.DataTransferElectricityKWh = ptr(dataTransfer)
		out.ClientDeviceEmissionsPerImpG = ptr(client)
	}

	if v, ok := p.r.Lookup(FieldCorporateEmissionsPerImpression, depth); ok {
		out.CorporateEmissionsPerImpressionG = ptr(v)
	}
	return out, nil
}

// PublisherProperty is an unmodeled property of a publisher.
type PublisherProperty struct {
	Identifier  string
	Environment Environment
	Facts       Values
	Defaults    Values
}

// PublisherCorporate carries optional corporate emissions for a publisher.
// EmissionsG is the publisher's monthly total in grams and wins over PerImpression.
type PublisherCorporate struct {
	EmissionsG    *decimal.Decimal
	PerImpression *decimal.Decimal
}

// ModelPublisher models every property of a publisher and allocates corporate
// emissions. A monthly total is shared across properties by impressions, a per
// impression value applies to every property, and otherwise each property
// keeps its template default.
func ModelPublisher(props []PublisherProperty, corporate PublisherCorporate, trace *Trace, depth int) ([]ModeledProperty, error) {
	modeled := make([]ModeledProperty, 0, len(props))
	total := decimal.Zero
	for _, pp := range props {
		p, err := NewProperty(pp.Environment, pp.Facts, pp.Defaults, trace)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", pp.Identifier, err)
		}
		m, err := p.Model(pp.Identifier, depth)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", pp.Identifier, err)
		}
		total = total.Add(m.Impressions)
		modeled = append(modeled, m)
	}

	switch {
	case corporate.EmissionsG != nil && !corporate.EmissionsG.IsZero():
		perImp, err := div(*corporate.EmissionsG, total, "publisher impressions")
		if err != nil {
			return nil, err
		}
		for i := range modeled {
			modeled[i].CorporateEmissionsPerImpressionG = ptr(perImp)
			trace.Result(1, modeled[i].Identifier+" corporate emissions g co2e per impression", perImp)
		}
	case corporate.PerImpression != nil && !corporate.PerImpression.IsZero():
		for i := range modeled {
			modeled[i].CorporateEmissionsPerImpressionG = ptr(*corporate.PerImpression)
			trace.Result(1, modeled[i].Identifier+" corporate emissions g co2e per impression", *corporate.PerImpression)
		}
	}
	return modeled, nil
}
