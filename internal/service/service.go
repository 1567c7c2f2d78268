// Package service runs the emissions models against the loaded defaults. It
// is shared by the REST API, the gRPC server and the CLI.
package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/defaults"
	"github.com/rshade/adtech-emissions/internal/facts"
)

// TraceDepth is the depth derivation traces start at.
const TraceDepth = 4

// ErrNoPublicFiles is returned by public file operations when no data
// directory was configured.
var ErrNoPublicFiles = errors.New("no data directory configured")

// Service computes emissions from request inputs and the defaults store.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store  *defaults.Store
	public *facts.PublicIndex
	logger zerolog.Logger
}

// New creates a Service. public may be nil when no data directory is available.
func New(store *defaults.Store, public *facts.PublicIndex, logger zerolog.Logger) *Service {
	return &Service{store: store, public: public, logger: logger}
}

// Defaults returns the defaults store.
func (s *Service) Defaults() *defaults.Store {
	return s.store
}

// CalculateCorporate models the corporate emissions of an organization.
func (s *Service) CalculateCorporate(in CorporateInput, trace *carbon.Trace) (carbon.ModeledCorporate, error) {
	orgType, err := carbon.ParseOrganizationType(in.OrgType)
	if err != nil {
		return carbon.ModeledCorporate{}, err
	}
	defs, err := s.store.Organization(orgType)
	if err != nil {
		return carbon.ModeledCorporate{}, err
	}
	return carbon.NewCorporate(in.Values(), defs, trace).Model(TraceDepth)
}

// CalculateATP models the primary emissions of one ad tech platform product.
func (s *Service) CalculateATP(in ATPInput, trace *carbon.Trace) (carbon.ModeledAdTechPlatform, error) {
	tpl, err := carbon.ParseATPTemplate(in.ATPTemplate)
	if err != nil {
		return carbon.ModeledAdTechPlatform{}, err
	}
	defs, err := s.store.ATP(tpl)
	if err != nil {
		return carbon.ModeledAdTechPlatform{}, err
	}
	values := in.Values()
	if in.DatacenterRegion != "" && !carbon.ApplyGridRegion(values, carbon.FieldServerEmissionsPerKWh, in.DatacenterRegion) {
		return carbon.ModeledAdTechPlatform{}, fmt.Errorf("%w: unknown datacenter region %q", carbon.ErrInvalidInput, in.DatacenterRegion)
	}
	atp := carbon.NewAdTechPlatform(values, defs, trace)
	return atp.ModelProduct(carbon.ProductInput{
		Name:       in.Name,
		Identifier: in.Identifier,
		Corporate:  carbon.CorporateAllocation{EmissionsG: in.CorporateEmissionsG},
	}, TraceDepth)
}

// CalculateSecondary returns the secondary emissions of one bid request
// distributed to the given partners.
func (s *Service) CalculateSecondary(in SecondaryInput, trace *carbon.Trace) SecondaryResult {
	return SecondaryResult{
		SecondaryBidRequestEmissionsGCO2e: carbon.SecondaryEmissionsPerBidRequest(in.Partners, trace, TraceDepth),
	}
}

// ATPDefaults summarizes one ad tech platform template.
func (s *Service) ATPDefaults(tpl carbon.ATPTemplate) (ATPDefaults, error) {
	defs, err := s.store.ATP(tpl)
	if err != nil {
		return ATPDefaults{}, err
	}
	// Defaults only, so every lookup below resolves to the template value.
	atp := carbon.NewAdTechPlatform(nil, defs, nil)
	atpBlock, err := atp.ATPBlockRate(0)
	if err != nil {
		return ATPDefaults{}, err
	}
	publisherBlock, err := atp.PublisherBlockRate(0)
	if err != nil {
		return ATPDefaults{}, err
	}
	out := ATPDefaults{
		Template:           string(tpl),
		ATPBlockRate:       atpBlock,
		PublisherBlockRate: publisherBlock,
	}
	if v, ok := defs[carbon.FieldCorporateEmissionsPerBidRequest]; ok {
		out.CorporateEmissionsPerBidRequest = &v
	}
	return out, nil
}

// AllATPDefaults summarizes every ad tech platform template.
func (s *Service) AllATPDefaults() ([]ATPDefaults, error) {
	out := make([]ATPDefaults, 0, len(carbon.ATPTemplates))
	for _, tpl := range carbon.ATPTemplates {
		d, err := s.ATPDefaults(tpl)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// PropertyDefaults summarizes the generic template of a property channel.
func (s *Service) PropertyDefaults(ch carbon.PropertyChannel) (PropertyDefaults, error) {
	defs, err := s.store.Property(ch)
	if err != nil {
		return PropertyDefaults{}, err
	}
	out := PropertyDefaults{Channel: string(ch), Template: carbon.GenericTemplate}
	if v, ok := defs[carbon.FieldCorporateEmissionsPerImpression]; ok {
		out.CorporateEmissionsPerImpression = &v
	}
	if v, ok := defs[carbon.FieldQualityImpressionsPerDurationS]; ok {
		out.QualityImpressionsPerDurationS = &v
	}
	return out, nil
}

// AllPropertyDefaults summarizes every property channel.
func (s *Service) AllPropertyDefaults() ([]PropertyDefaults, error) {
	out := make([]PropertyDefaults, 0, len(carbon.PropertyChannels))
	for _, ch := range carbon.PropertyChannels {
		d, err := s.PropertyDefaults(ch)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ModelDevice models one device for one channel. facts may override the
// device defaults.
func (s *Service) ModelDevice(device carbon.EndUserDeviceType, ch carbon.PropertyChannel, values carbon.Values, trace *carbon.Trace) (carbon.ModeledEndUserDevice, error) {
	defs, err := s.store.EndUserDevice(device)
	if err != nil {
		return carbon.ModeledEndUserDevice{}, err
	}
	prop, err := s.store.Property(ch)
	if err != nil {
		return carbon.ModeledEndUserDevice{}, err
	}
	q, ok := prop[carbon.FieldQualityImpressionsPerDurationS]
	if !ok {
		return carbon.ModeledEndUserDevice{}, &carbon.MissingValueError{Field: carbon.FieldQualityImpressionsPerDurationS}
	}
	return carbon.NewEndUserDevice(values, defs, trace).Model(device, ch, carbon.GenericTemplate, q, TraceDepth)
}

// EndUserDeviceDefaults models every device for every channel from defaults.
// Channels without a quality_impressions_per_duration_s default are skipped.
func (s *Service) EndUserDeviceDefaults() ([]carbon.ModeledEndUserDevice, error) {
	channels := make([]carbon.PropertyChannel, 0, len(carbon.PropertyChannels))
	for _, ch := range carbon.PropertyChannels {
		prop, err := s.store.Property(ch)
		if err != nil {
			return nil, err
		}
		if _, ok := prop[carbon.FieldQualityImpressionsPerDurationS]; !ok {
			s.logger.Debug().Str("channel", string(ch)).Msg("skipping channel without quality impressions rate")
			continue
		}
		channels = append(channels, ch)
	}

	out := make([]carbon.ModeledEndUserDevice, 0, len(carbon.EndUserDevices)*len(channels))
	for _, device := range carbon.EndUserDevices {
		for _, ch := range channels {
			m, err := s.ModelDevice(device, ch, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", device, ch, err)
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// ModelNetworkingDevice models one device on one connection type. Devices
// with a configured streaming resolution get the power model at that rate.
func (s *Service) ModelNetworkingDevice(ct carbon.ConnectionType, device carbon.EndUserDeviceType) (carbon.ModeledDeviceNetworking, error) {
	conn, err := s.store.Networking(ct)
	if err != nil {
		return carbon.ModeledDeviceNetworking{}, err
	}
	var rate *carbon.TransmissionRate
	if res, ok := conn.ResolutionFor(device); ok {
		r, err := s.store.TransmissionRate(res)
		if err != nil {
			return carbon.ModeledDeviceNetworking{}, err
		}
		rate = &r
	}
	return conn.ModelDevice(device, ct, rate), nil
}

// ModelNetworking models every device on one connection type.
func (s *Service) ModelNetworking(ct carbon.ConnectionType) ([]carbon.ModeledDeviceNetworking, error) {
	out := make([]carbon.ModeledDeviceNetworking, 0, len(carbon.EndUserDevices))
	for _, device := range carbon.EndUserDevices {
		m, err := s.ModelNetworkingDevice(ct, device)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// NetworkingDefaults models every device on every connection type.
func (s *Service) NetworkingDefaults() ([]carbon.ModeledDeviceNetworking, error) {
	var out []carbon.ModeledDeviceNetworking
	for _, ct := range carbon.ConnectionTypes {
		m, err := s.ModelNetworking(ct)
		if err != nil {
			return nil, err
		}
		out = append(out, m...)
	}
	return out, nil
}

// ListPublicFiles lists the public files of a type.
func (s *Service) ListPublicFiles(fileType string) ([]facts.PublicFile, error) {
	if s.public == nil {
		return nil, ErrNoPublicFiles
	}
	return s.public.List(fileType), nil
}

// ParseCorporateFile returns the raw facts of a public corporate file.
func (s *Service) ParseCorporateFile(identifier string) (facts.ParsedCorporate, error) {
	if s.public == nil {
		return facts.ParsedCorporate{}, ErrNoPublicFiles
	}
	return s.public.ParseCorporate(identifier)
}

// ModelCompanyCorporate models the corporate emissions declared in a company file.
func (s *Service) ModelCompanyCorporate(c *facts.Company, orgType carbon.OrganizationType, trace *carbon.Trace) (carbon.ModeledCorporate, error) {
	if c.Name == "" {
		return carbon.ModeledCorporate{}, fmt.Errorf("%w: no 'name' field found in company file", carbon.ErrInvalidInput)
	}
	values, err := c.Facts.Values()
	if err != nil {
		return carbon.ModeledCorporate{}, err
	}
	defs, err := s.store.Organization(orgType)
	if err != nil {
		return carbon.ModeledCorporate{}, err
	}
	trace.Section(c.Name)
	return carbon.NewCorporate(values, defs, trace).Model(TraceDepth)
}

// ModelCompanyProducts models every product in a company file. Distribution
// partners must be products of the same file; partners are modeled first.
func (s *Service) ModelCompanyProducts(c *facts.Company, corporate carbon.CorporateAllocation, trace *carbon.Trace) ([]carbon.ModeledAdTechPlatform, error) {
	if len(c.Products) == 0 {
		return nil, fmt.Errorf("%w: no 'products' field found in company file", carbon.ErrInvalidInput)
	}
	g := carbon.NewPartnerGraph()
	for _, p := range c.Products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		tpl, err := carbon.ParseATPTemplate(p.Template)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.Name, err)
		}
		defs, err := s.store.ATP(tpl)
		if err != nil {
			return nil, err
		}
		values, err := p.Values()
		if err != nil {
			return nil, err
		}
		if err := g.Add(carbon.GraphProduct{
			Name:       p.Name,
			Identifier: p.Identifier,
			Facts:      values,
			Defaults:   defs,
			Partners:   p.DistributionPartners,
			Corporate:  corporate,
		}); err != nil {
			return nil, err
		}
	}
	s.logger.Debug().Int("products", g.Len()).Str("company", c.Name).Msg("modeling products")
	return g.Model(trace, TraceDepth)
}

// PropertyOptions apply to every property of a company file unless the
// property sets its own value.
type PropertyOptions struct {
	Environment   carbon.Environment
	GridIntensity *decimal.Decimal
	Corporate     carbon.PublisherCorporate
}

// ModelCompanyProperties models every property in a company file and
// allocates publisher corporate emissions across them.
func (s *Service) ModelCompanyProperties(c *facts.Company, opts PropertyOptions, trace *carbon.Trace) ([]carbon.ModeledProperty, error) {
	if len(c.Properties) == 0 {
		return nil, fmt.Errorf("%w: no 'properties' field found in company file", carbon.ErrInvalidInput)
	}
	props := make([]carbon.PublisherProperty, 0, len(c.Properties))
	for _, p := range c.Properties {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if p.Template != carbon.GenericTemplate {
			return nil, &carbon.TemplateError{Kind: defaults.KindProperty, Template: p.Template}
		}
		ch, err := p.ChannelOrDefault()
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Identifier, err)
		}
		defs, err := s.store.Property(ch)
		if err != nil {
			return nil, err
		}
		values, err := p.Values()
		if err != nil {
			return nil, err
		}
		if opts.GridIntensity != nil {
			values.SetDefault(carbon.FieldGridIntensity, *opts.GridIntensity)
		}
		env := opts.Environment
		if p.Environment != "" {
			if env, err = carbon.ParseEnvironment(p.Environment); err != nil {
				return nil, fmt.Errorf("property %s: %w", p.Identifier, err)
			}
		}
		props = append(props, carbon.PublisherProperty{
			Identifier:  p.Identifier,
			Environment: env,
			Facts:       values,
			Defaults:    defs,
		})
	}
	return carbon.ModelPublisher(props, opts.Corporate, trace, TraceDepth)
}
