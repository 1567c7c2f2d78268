package service

import (
	"github.com/shopspring/decimal"

	"github.com/rshade/adtech-emissions/internal/carbon"
)

// CorporateInput requests the corporate emissions of an organization.
type CorporateInput struct {
	OrgType                        string           `json:"org_type"`
	OfficeEmissionsPerEmployee     *decimal.Decimal `json:"office_emissions_mt_co2e_per_employee_per_month,omitempty"`
	DatacenterEmissionsPerEmployee *decimal.Decimal `json:"datacenter_emissions_mt_co2e_per_employee_per_month,omitempty"`
	TravelEmissionsPerEmployee     *decimal.Decimal `json:"travel_emissions_mt_co2e_per_employee_per_month,omitempty"`
	CommutingEmissionsPerEmployee  *decimal.Decimal `json:"commuting_emissions_mt_co2e_per_employee_per_month,omitempty"`
	OverheadEmissionsPerEmployee   *decimal.Decimal `json:"overhead_emissions_mt_co2e_per_employee_per_month,omitempty"`
	CorporateEmissionsMTPerMonth   *decimal.Decimal `json:"corporate_emissions_mt_co2e_per_month,omitempty"`
	NumberOfEmployees              *decimal.Decimal `json:"number_of_employees,omitempty"`
}

// Values returns the supplied fields.
func (in CorporateInput) Values() carbon.Values {
	v := make(carbon.Values)
	put(v, carbon.FieldOfficeEmissionsPerEmployee, in.OfficeEmissionsPerEmployee)
	put(v, carbon.FieldDatacenterEmissionsPerEmployee, in.DatacenterEmissionsPerEmployee)
	put(v, carbon.FieldTravelEmissionsPerEmployee, in.TravelEmissionsPerEmployee)
	put(v, carbon.FieldCommutingEmissionsPerEmployee, in.CommutingEmissionsPerEmployee)
	put(v, carbon.FieldOverheadEmissionsPerEmployee, in.OverheadEmissionsPerEmployee)
	put(v, carbon.FieldCorporateEmissionsMTPerMonth, in.CorporateEmissionsMTPerMonth)
	put(v, carbon.FieldNumberOfEmployees, in.NumberOfEmployees)
	return v
}

// ATPInput requests the primary emissions of one ad tech platform product.
type ATPInput struct {
	Name                                   string           `json:"name"`
	Identifier                             string           `json:"identifier"`
	ATPTemplate                            string           `json:"atp_template"`
	CorporateEmissionsG                    *decimal.Decimal `json:"corporate_emissions_g_co2e,omitempty"`
	AllocationOfCompanyServersPct          *decimal.Decimal `json:"allocation_of_company_servers_pct,omitempty"`
	AllocationOfCorporateEmissionsPct      *decimal.Decimal `json:"allocation_of_corporate_emissions_pct,omitempty"`
	CorporateEmissionsPerBidRequest        *decimal.Decimal `json:"corporate_emissions_g_co2e_per_bid_request,omitempty"`
	BidRequestsFromAdTechPlatformsPct      *decimal.Decimal `json:"bid_requests_processed_from_ad_tech_platforms_pct,omitempty"`
	BidRequestsFromPublishersPct           *decimal.Decimal `json:"bid_requests_processed_from_publishers_pct,omitempty"`
	BidRequestSizeBytes                    *decimal.Decimal `json:"bid_request_size_in_bytes,omitempty"`
	DepreciationDollarsPerMonth            *decimal.Decimal `json:"depreciation_dollars_per_month,omitempty"`
	ServerEmissionsMTPerDollarDepreciation *decimal.Decimal `json:"server_emissions_mt_per_dollar_of_depreciation,omitempty"`
	ServerToServerEmissionsPerGB           *decimal.Decimal `json:"server_to_server_emissions_g_co2e_per_gb,omitempty"`
	ServerEmissionsMTPerMonth              *decimal.Decimal `json:"server_emissions_mt_co2e_per_month,omitempty"`
	ServersProcessingBidRequestsPct        *decimal.Decimal `json:"servers_processing_bid_requests_pct,omitempty"`
	CookieSyncsPerBidRequest               *decimal.Decimal `json:"cookie_syncs_processed_per_bid_request,omitempty"`
	DatacenterWaterIntensity               *decimal.Decimal `json:"datacenter_water_intensity_h2o_m_3_per_mwh,omitempty"`
	ServerEmissionsPerKWh                  *decimal.Decimal `json:"server_emissions_g_co2e_per_kwh,omitempty"`
	ServersProcessingCookieSyncsPct        *decimal.Decimal `json:"servers_processing_cookie_syncs_pct,omitempty"`
	CookieSyncDistributionRatio            *decimal.Decimal `json:"cookie_sync_distribution_ratio,omitempty"`
	BidRequestsBillionPerMonth             *decimal.Decimal `json:"bid_requests_processed_billion_per_month,omitempty"`
	CookieSyncsBillionPerMonth             *decimal.Decimal `json:"cookie_syncs_processed_billion_per_month,omitempty"`
	DataTransferEmissionsMTPerMonth        *decimal.Decimal `json:"data_transfer_emissions_mt_co2e_per_month,omitempty"`
	DatacenterRegion                       string           `json:"datacenter_region,omitempty"`
}

// Values returns the supplied fields. Allocation percentages that are
// missing or zero are set to 100.
func (in ATPInput) Values() carbon.Values {
	v := make(carbon.Values)
	put(v, carbon.FieldAllocationOfCompanyServersPct, nonZero(in.AllocationOfCompanyServersPct))
	put(v, carbon.FieldAllocationOfCorporateEmissionsPct, nonZero(in.AllocationOfCorporateEmissionsPct))
	put(v, carbon.FieldCorporateEmissionsPerBidRequest, in.CorporateEmissionsPerBidRequest)
	put(v, carbon.FieldBidRequestsFromAdTechPlatformsPct, in.BidRequestsFromAdTechPlatformsPct)
	put(v, carbon.FieldBidRequestsFromPublishersPct, in.BidRequestsFromPublishersPct)
	put(v, carbon.FieldBidRequestSizeBytes, in.BidRequestSizeBytes)
	put(v, carbon.FieldDepreciationDollarsPerMonth, in.DepreciationDollarsPerMonth)
	put(v, carbon.FieldServerEmissionsMTPerDollarDepreciation, in.ServerEmissionsMTPerDollarDepreciation)
	put(v, carbon.FieldServerToServerEmissionsPerGB, in.ServerToServerEmissionsPerGB)
	put(v, carbon.FieldServerEmissionsMTPerMonth, in.ServerEmissionsMTPerMonth)
	put(v, carbon.FieldServersProcessingBidRequestsPct, in.ServersProcessingBidRequestsPct)
	put(v, carbon.FieldCookieSyncsPerBidRequest, in.CookieSyncsPerBidRequest)
	put(v, carbon.FieldDatacenterWaterIntensity, in.DatacenterWaterIntensity)
	put(v, carbon.FieldServerEmissionsPerKWh, in.ServerEmissionsPerKWh)
	put(v, carbon.FieldServersProcessingCookieSyncsPct, in.ServersProcessingCookieSyncsPct)
	put(v, carbon.FieldCookieSyncDistributionRatio, in.CookieSyncDistributionRatio)
	put(v, carbon.FieldBidRequestsBillionPerMonth, in.BidRequestsBillionPerMonth)
	put(v, carbon.FieldCookieSyncsBillionPerMonth, in.CookieSyncsBillionPerMonth)
	put(v, carbon.FieldDataTransferEmissionsMTPerMonth, in.DataTransferEmissionsMTPerMonth)
	return v
}

// SecondaryInput lists the modeled partners a platform distributes bid requests to.
type SecondaryInput struct {
	Partners []carbon.DistributionPartner `json:"partners"`
}

// SecondaryResult is the secondary emissions of one bid request.
type SecondaryResult struct {
	SecondaryBidRequestEmissionsGCO2e decimal.Decimal `json:"secondary_bid_request_emissions_g_co2e" yaml:"secondary_bid_request_emissions_g_co2e"`
}

// ATPDefaults summarizes the defaults of an ad tech platform template.
type ATPDefaults struct {
	Template                        string           `json:"template" yaml:"template"`
	CorporateEmissionsPerBidRequest *decimal.Decimal `json:"corporate_emissions_g_co2e_per_bid_request" yaml:"corporate_emissions_g_co2e_per_bid_request"`
	ATPBlockRate                    decimal.Decimal  `json:"adtech_platform_block_rate" yaml:"adtech_platform_block_rate"`
	PublisherBlockRate              decimal.Decimal  `json:"publisher_block_rate" yaml:"publisher_block_rate"`
}

// PropertyDefaults summarizes the defaults of a property channel.
type PropertyDefaults struct {
	Channel                         string           `json:"channel" yaml:"channel"`
	Template                        string           `json:"template" yaml:"template"`
	CorporateEmissionsPerImpression *decimal.Decimal `json:"corporate_emissions_g_co2e_per_impression" yaml:"corporate_emissions_g_co2e_per_impression"`
	QualityImpressionsPerDurationS  *decimal.Decimal `json:"quality_impressions_per_duration_s" yaml:"quality_impressions_per_duration_s"`
}

func put(v carbon.Values, f carbon.Field, d *decimal.Decimal) {
	if d != nil {
		v[f] = *d
	}
}

func nonZero(d *decimal.Decimal) *decimal.Decimal {
	if d == nil || d.IsZero() {
		hundred := carbon.OneHundred
		return &hundred
	}
	return d
}
