package carbon

import (
	"github.com/shopspring/decimal"
)

// AdTechPlatformEligibleFields are the ad tech platform inputs that fall back
// to ATP template defaults.
var AdTechPlatformEligibleFields = NewFieldSet(
	FieldCorporateEmissionsPerBidRequest,
	FieldBidRequestsFromAdTechPlatformsPct,
	FieldBidRequestsFromPublishersPct,
	FieldBidRequestSizeBytes,
	FieldServerEmissionsMTPerDollarDepreciation,
	FieldServerToServerEmissionsPerGB,
	FieldServerEmissionsMTPerMonth,
	FieldServersProcessingBidRequestsPct,
	FieldCookieSyncsPerBidRequest,
	FieldDatacenterWaterIntensity,
	FieldServerEmissionsPerKWh,
	FieldServersProcessingCookieSyncsPct,
	FieldCookieSyncDistributionRatio,
	FieldBidRequestsBillionPerMonth,
)

// AdTechPlatformFields is every input accepted by the ad tech platform model.
var AdTechPlatformFields = func() FieldSet {
	s := NewFieldSet(
		FieldAllocationOfCompanyServersPct,
		FieldAllocationOfCorporateEmissionsPct,
		FieldDepreciationDollarsPerMonth,
		FieldCookieSyncsBillionPerMonth,
		FieldDataTransferEmissionsMTPerMonth,
	)
	for f := range AdTechPlatformEligibleFields {
		s[f] = struct{}{}
	}
	return s
}()

// ModeledAdTechPlatform is a modeled node of the distribution graph.
type ModeledAdTechPlatform struct {
	Name                              string           `json:"name" yaml:"name"`
	Identifier                        string           `json:"identifier" yaml:"identifier"`
	PrimaryBidRequestEmissionsGCO2e   decimal.Decimal  `json:"primary_bid_request_emissions_g_co2e" yaml:"primary_bid_request_emissions_g_co2e"`
	PrimaryCookieSyncEmissionsGCO2e   decimal.Decimal  `json:"primary_cookie_sync_emissions_g_co2e" yaml:"primary_cookie_sync_emissions_g_co2e"`
	CorporatePerBidRequestGCO2e       *decimal.Decimal `json:"corporate_emissions_g_co2e_per_bid_request,omitempty" yaml:"corporate_emissions_g_co2e_per_bid_request,omitempty"`
	CookieSyncDistributionRatio       *decimal.Decimal `json:"cookie_sync_distribution_ratio,omitempty" yaml:"cookie_sync_distribution_ratio,omitempty"`
	ATPBlockRate                      decimal.Decimal  `json:"atp_block_rate" yaml:"atp_block_rate"`
	PublisherBlockRate                decimal.Decimal  `json:"publisher_block_rate" yaml:"publisher_block_rate"`
	SecondaryBidRequestEmissionsGCO2e *decimal.Decimal `json:"secondary_bid_request_emissions_g_co2e,omitempty" yaml:"secondary_bid_request_emissions_g_co2e,omitempty"`
	SecondaryCookieSyncEmissionsGCO2e *decimal.Decimal `json:"secondary_cookie_sync_emissions_g_co2e,omitempty" yaml:"secondary_cookie_sync_emissions_g_co2e,omitempty"`
}

// DistributionPartner is a weighted edge to a downstream platform that
// receives a share of this platform's bid requests.
type DistributionPartner struct {
	Partner                    ModeledAdTechPlatform `json:"partner" yaml:"partner"`
	BidRequestDistributionRate decimal.Decimal       `json:"bid_request_distribution_rate" yaml:"bid_request_distribution_rate"`
}

// CorporateAllocation carries optional corporate emissions supplied for a
// product. EmissionsG is the organization's monthly total in grams and wins
// over PerBidRequest.
type CorporateAllocation struct {
	EmissionsG    *decimal.Decimal
	PerBidRequest *decimal.Decimal
}

// ProductInput identifies a product to model.
type ProductInput struct {
	Name       string
	Identifier string
	Partners   []DistributionPartner
	Corporate  CorporateAllocation
}

// AdTechPlatform models the serving infrastructure of a DSP, SSP or similar
// platform: server, data transfer and allocated corporate emissions per bid
// request and per cookie sync.
type AdTechPlatform struct {
	r *Resolver
}

// NewAdTechPlatform creates an ad tech platform model from explicit facts and
// ATP template defaults. Company server and corporate allocation default to 100%.
func NewAdTechPlatform(facts, defaults Values, trace *Trace) *AdTechPlatform {
	f := facts.Clone()
	f.SetDefault(FieldAllocationOfCompanyServersPct, OneHundred)
	f.SetDefault(FieldAllocationOfCorporateEmissionsPct, OneHundred)
	return &AdTechPlatform{r: NewResolver(f, defaults, AdTechPlatformEligibleFields, trace)}
}

// BidRequestsPerMonth returns the monthly bid request volume.
func (a *AdTechPlatform) BidRequestsPerMonth(depth int) (decimal.Decimal, error) {
	billions, err := a.r.Get(FieldBidRequestsBillionPerMonth, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return billions.Mul(Billion), nil
}

// ServerEmissionsGPerMonth returns monthly server emissions in grams. When
// depreciation is known, emissions are derived from the depreciation spend.
func (a *AdTechPlatform) ServerEmissionsGPerMonth(depth int) (decimal.Decimal, error) {
	if a.r.IsSet(FieldDepreciationDollarsPerMonth) {
		dollars, _ := a.r.Get(FieldDepreciationDollarsPerMonth, depth)
		perDollar, err := a.r.Get(FieldServerEmissionsMTPerDollarDepreciation, depth)
		if err != nil {
			return decimal.Zero, err
		}
		return perDollar.Mul(dollars).Mul(GramsPerMetricTon), nil
	}
	mt, err := a.r.Get(FieldServerEmissionsMTPerMonth, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return mt.Mul(GramsPerMetricTon), nil
}

func (a *AdTechPlatform) rate(f Field, depth int) (decimal.Decimal, error) {
	pct, err := a.r.Get(f, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return rate(pct), nil
}

// ATPBlockRate is the share of bid requests from other ad tech platforms
// that this platform does not process.
func (a *AdTechPlatform) ATPBlockRate(depth int) (decimal.Decimal, error) {
	pct, err := a.r.Get(FieldBidRequestsFromAdTechPlatformsPct, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return blockRate(pct), nil
}

// PublisherBlockRate is the share of bid requests direct from publishers
// that this platform does not process.
func (a *AdTechPlatform) PublisherBlockRate(depth int) (decimal.Decimal, error) {
	pct, err := a.r.Get(FieldBidRequestsFromPublishersPct, depth)
	if err != nil {
		return decimal.Zero, err
	}
	return blockRate(pct), nil
}

// DataTransferEmissionsPerBidRequest returns data transfer grams CO2e per bid
// request, from a measured monthly total when present and otherwise from the
// bid request size and the server-to-server intensity.
func (a *AdTechPlatform) DataTransferEmissionsPerBidRequest(depth int) (decimal.Decimal, error) {
	bidRequests, err := a.BidRequestsPerMonth(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}

	var perMonth decimal.Decimal
	if a.r.IsSet(FieldDataTransferEmissionsMTPerMonth) {
		mt, _ := a.r.Get(FieldDataTransferEmissionsMTPerMonth, depth-1)
		perMonth = mt.Mul(GramsPerMetricTon)
	} else {
		size, err := a.r.Get(FieldBidRequestSizeBytes, depth-1)
		if err != nil {
			return decimal.Zero, err
		}
		intensity, err := a.r.Get(FieldServerToServerEmissionsPerGB, depth-1)
		if err != nil {
			return decimal.Zero, err
		}
		perMonth = size.DivRound(BytesPerGB, DivisionPrecision).Mul(intensity)
	}

	perBidRequest, err := div(perMonth, bidRequests, "bid requests per month")
	if err != nil {
		return decimal.Zero, err
	}
	a.r.trace.Result(depth, "data transfer emissions g co2e per bid request", perBidRequest)
	return perBidRequest, nil
}

// ServerEmissionsPerBidRequest returns server grams CO2e per bid request.
func (a *AdTechPlatform) ServerEmissionsPerBidRequest(depth int) (decimal.Decimal, error) {
	serverG, err := a.ServerEmissionsGPerMonth(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	a.r.trace.Result(depth-1, "server emissions g co2e per month", serverG)

	companyServers, err := a.rate(FieldAllocationOfCompanyServersPct, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	bidRequestServers, err := a.rate(FieldServersProcessingBidRequestsPct, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	bidRequests, err := a.BidRequestsPerMonth(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}

	perBidRequest, err := div(companyServers.Mul(serverG).Mul(bidRequestServers), bidRequests, "bid requests per month")
	if err != nil {
		return decimal.Zero, err
	}
	a.r.trace.Result(depth, "server emissions g co2e per bid request", perBidRequest)
	return perBidRequest, nil
}

// CorporateEmissionsPerBidRequest allocates corporate emissions to each bid
// request. Priority order: allocated monthly grams > supplied per bid request
// value > explicit fact > template default. Zero values count as unset.
func (a *AdTechPlatform) CorporateEmissionsPerBidRequest(alloc CorporateAllocation, depth int) (decimal.Decimal, error) {
	if alloc.EmissionsG != nil && !alloc.EmissionsG.IsZero() {
		corporateRate, err := a.rate(FieldAllocationOfCorporateEmissionsPct, depth-1)
		if err != nil {
			return decimal.Zero, err
		}
		bidRequests, err := a.BidRequestsPerMonth(depth - 1)
		if err != nil {
			return decimal.Zero, err
		}
		perBidRequest, err := div(corporateRate.Mul(*alloc.EmissionsG), bidRequests, "bid requests per month")
		if err != nil {
			return decimal.Zero, err
		}
		a.r.trace.Result(depth, "corporate emissions g co2e per bid request", perBidRequest)
		return perBidRequest, nil
	}
	if alloc.PerBidRequest != nil && !alloc.PerBidRequest.IsZero() {
		a.r.trace.Step(depth, FieldCorporateEmissionsPerBidRequest, *alloc.PerBidRequest, SourceFact)
		return *alloc.PerBidRequest, nil
	}
	if v, ok := a.r.Fact(FieldCorporateEmissionsPerBidRequest); ok && !v.IsZero() {
		a.r.trace.Step(depth, FieldCorporateEmissionsPerBidRequest, v, SourceFact)
		return v, nil
	}
	if v, ok := a.r.Default(FieldCorporateEmissionsPerBidRequest); ok && !v.IsZero() {
		a.r.trace.Step(depth, FieldCorporateEmissionsPerBidRequest, v, SourceDefault)
		return v, nil
	}
	return decimal.Zero, &MissingValueError{Field: FieldCorporateEmissionsPerBidRequest}
}

// PrimaryEmissionsPerBidRequest returns the sum of corporate, data transfer
// and server grams CO2e per bid request.
func (a *AdTechPlatform) PrimaryEmissionsPerBidRequest(corporate decimal.Decimal, depth int) (decimal.Decimal, error) {
	dataTransfer, err := a.DataTransferEmissionsPerBidRequest(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	server, err := a.ServerEmissionsPerBidRequest(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	primary := corporate.Add(dataTransfer).Add(server)
	a.r.trace.Result(depth, "primary emissions g co2e per bid request", primary)
	return primary, nil
}

// CookieSyncsPerMonth returns the monthly cookie sync volume, measured when
// known and otherwise derived from the bid request volume.
func (a *AdTechPlatform) CookieSyncsPerMonth(depth int) (decimal.Decimal, error) {
	if a.r.IsSet(FieldCookieSyncsBillionPerMonth) {
		billions, _ := a.r.Get(FieldCookieSyncsBillionPerMonth, depth)
		return billions.Mul(Billion), nil
	}
	bidRequests, err := a.BidRequestsPerMonth(depth)
	if err != nil {
		return decimal.Zero, err
	}
	perBidRequest, err := a.r.Get(FieldCookieSyncsPerBidRequest, depth)
	if err != nil {
		return decimal.Zero, err
	}
	syncs := bidRequests.Mul(perBidRequest)
	a.r.trace.Result(depth, "cookie syncs processed per month", syncs)
	return syncs, nil
}

// PrimaryEmissionsPerCookieSync returns server grams CO2e per cookie sync.
func (a *AdTechPlatform) PrimaryEmissionsPerCookieSync(depth int) (decimal.Decimal, error) {
	serverG, err := a.ServerEmissionsGPerMonth(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	companyServers, err := a.rate(FieldAllocationOfCompanyServersPct, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	syncServers, err := a.rate(FieldServersProcessingCookieSyncsPct, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	syncs, err := a.CookieSyncsPerMonth(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	perSync, err := div(companyServers.Mul(serverG).Mul(syncServers), syncs, "cookie syncs per month")
	if err != nil {
		return decimal.Zero, err
	}
	a.r.trace.Result(depth, "primary emissions g per cookie sync", perSync)
	return perSync, nil
}

// WaterPerGramCO2e returns datacenter water use in cubic meters per gram CO2e.
func (a *AdTechPlatform) WaterPerGramCO2e(depth int) (decimal.Decimal, error) {
	intensity, err := a.r.Get(FieldDatacenterWaterIntensity, depth)
	if err != nil {
		return decimal.Zero, err
	}
	gPerKWh, err := a.r.Get(FieldServerEmissionsPerKWh, depth)
	if err != nil {
		return decimal.Zero, err
	}
	perG, err := div(intensity, gPerKWh, string(FieldServerEmissionsPerKWh))
	if err != nil {
		return decimal.Zero, err
	}
	perG = perG.DivRound(OneThousand, DivisionPrecision)
	a.r.trace.Result(depth, "h2o m^3 per g co2e emissions", perG)
	return perG, nil
}

// WaterPerCookieSync returns datacenter water use in cubic meters per cookie sync.
func (a *AdTechPlatform) WaterPerCookieSync(depth int) (decimal.Decimal, error) {
	ratio, err := a.WaterPerGramCO2e(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	perSync, err := a.PrimaryEmissionsPerCookieSync(depth)
	if err != nil {
		return decimal.Zero, err
	}
	water := perSync.Mul(ratio)
	a.r.trace.Result(depth, "primary water usage m^3 per cookie sync", water)
	return water, nil
}

// SecondaryEmissionsPerBidRequest sums the emissions of the bid requests this
// platform forwards to its partners.
func SecondaryEmissionsPerBidRequest(partners []DistributionPartner, trace *Trace, depth int) decimal.Decimal {
	total := decimal.Zero
	one := decimal.NewFromInt(1)
	for _, edge := range partners {
		processed := one.Sub(edge.Partner.ATPBlockRate).Mul(edge.Partner.PrimaryBidRequestEmissionsGCO2e)
		total = total.Add(edge.BidRequestDistributionRate.Mul(processed))
	}
	if len(partners) > 0 {
		trace.Result(depth, "secondary emissions g co2e per bid request", total)
	}
	return total
}

// SecondaryEmissionsPerCookieSync sums partner cookie sync emissions scaled by
// this platform's cookie sync distribution ratio.
func (a *AdTechPlatform) SecondaryEmissionsPerCookieSync(partners []DistributionPartner, depth int) (decimal.Decimal, error) {
	total := decimal.Zero
	if len(partners) == 0 {
		return total, nil
	}
	for _, edge := range partners {
		total = total.Add(edge.Partner.PrimaryCookieSyncEmissionsGCO2e)
	}
	ratio, err := a.r.Get(FieldCookieSyncDistributionRatio, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	total = total.Mul(ratio)
	a.r.trace.Result(depth, "secondary emissions g per cookie sync", total)
	return total, nil
}

// ModelProduct models one product of the platform. Secondary emissions are
// only set when the product has distribution partners.
func (a *AdTechPlatform) ModelProduct(in ProductInput, depth int) (ModeledAdTechPlatform, error) {
	a.r.trace.Section(in.Name)

	corporate, err := a.CorporateEmissionsPerBidRequest(in.Corporate, depth)
	if err != nil {
		return ModeledAdTechPlatform{}, err
	}
	primaryBR, err := a.PrimaryEmissionsPerBidRequest(corporate, depth)
	if err != nil {
		return ModeledAdTechPlatform{}, err
	}
	primaryCS, err := a.PrimaryEmissionsPerCookieSync(depth)
	if err != nil {
		return ModeledAdTechPlatform{}, err
	}
	atpBlock, err := a.ATPBlockRate(depth)
	if err != nil {
		return ModeledAdTechPlatform{}, err
	}
	publisherBlock, err := a.PublisherBlockRate(depth)
	if err != nil {
		return ModeledAdTechPlatform{}, err
	}

	out := ModeledAdTechPlatform{
		Name:                            in.Name,
		Identifier:                      in.Identifier,
		PrimaryBidRequestEmissionsGCO2e: primaryBR,
		PrimaryCookieSyncEmissionsGCO2e: primaryCS,
		CorporatePerBidRequestGCO2e:     ptr(corporate),
		ATPBlockRate:                    atpBlock,
		PublisherBlockRate:              publisherBlock,
	}
	if ratio, ok := a.r.Lookup(FieldCookieSyncDistributionRatio, depth); ok {
		out.CookieSyncDistributionRatio = ptr(ratio)
	}

	if len(in.Partners) > 0 {
		secondaryBR := SecondaryEmissionsPerBidRequest(in.Partners, a.r.trace, depth)
		secondaryCS, err := a.SecondaryEmissionsPerCookieSync(in.Partners, depth)
		if err != nil {
			return ModeledAdTechPlatform{}, err
		}
		out.SecondaryBidRequestEmissionsGCO2e = ptr(secondaryBR)
		out.SecondaryCookieSyncEmissionsGCO2e = ptr(secondaryCS)
	}
	return out, nil
}
