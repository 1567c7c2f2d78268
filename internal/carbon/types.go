package carbon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a quantity that can be supplied as a fact or a default.
// Field values match the snake_case keys used in YAML and JSON documents.
type Field string

// Corporate fields.
const (
	FieldOfficeEmissionsPerEmployee     Field = "office_emissions_mt_co2e_per_employee_per_month"
	FieldDatacenterEmissionsPerEmployee Field = "datacenter_emissions_mt_co2e_per_employee_per_month"
	FieldTravelEmissionsPerEmployee     Field = "travel_emissions_mt_co2e_per_employee_per_month"
	FieldCommutingEmissionsPerEmployee  Field = "commuting_emissions_mt_co2e_per_employee_per_month"
	FieldOverheadEmissionsPerEmployee   Field = "overhead_emissions_mt_co2e_per_employee_per_month"
	FieldCorporateEmissionsMTPerMonth   Field = "corporate_emissions_mt_co2e_per_month"
	FieldNumberOfEmployees              Field = "number_of_employees"
)

// Ad tech platform fields.
const (
	FieldAllocationOfCompanyServersPct          Field = "allocation_of_company_servers_pct"
	FieldAllocationOfCorporateEmissionsPct      Field = "allocation_of_corporate_emissions_pct"
	FieldCorporateEmissionsPerBidRequest        Field = "corporate_emissions_g_co2e_per_bid_request"
	FieldBidRequestsFromAdTechPlatformsPct      Field = "bid_requests_processed_from_ad_tech_platforms_pct"
	FieldBidRequestsFromPublishersPct           Field = "bid_requests_processed_from_publishers_pct"
	FieldBidRequestSizeBytes                    Field = "bid_request_size_in_bytes"
	FieldDepreciationDollarsPerMonth            Field = "depreciation_dollars_per_month"
	FieldServerEmissionsMTPerDollarDepreciation Field = "server_emissions_mt_per_dollar_of_depreciation"
	FieldServerToServerEmissionsPerGB           Field = "server_to_server_emissions_g_co2e_per_gb"
	FieldServerEmissionsMTPerMonth              Field = "server_emissions_mt_co2e_per_month"
	FieldServersProcessingBidRequestsPct        Field = "servers_processing_bid_requests_pct"
	FieldCookieSyncsPerBidRequest               Field = "cookie_syncs_processed_per_bid_request"
	FieldDatacenterWaterIntensity               Field = "datacenter_water_intensity_h2o_m_3_per_mwh"
	FieldServerEmissionsPerKWh                  Field = "server_emissions_g_co2e_per_kwh"
	FieldServersProcessingCookieSyncsPct        Field = "servers_processing_cookie_syncs_pct"
	FieldCookieSyncDistributionRatio            Field = "cookie_sync_distribution_ratio"
	FieldBidRequestsBillionPerMonth             Field = "bid_requests_processed_billion_per_month"
	FieldCookieSyncsBillionPerMonth             Field = "cookie_syncs_processed_billion_per_month"
	FieldDataTransferEmissionsMTPerMonth        Field = "data_transfer_emissions_mt_co2e_per_month"
	FieldBidRequestDistributionRate             Field = "bid_request_distribution_rate"
	FieldCorporateEmissionsG                    Field = "corporate_emissions_g_co2e"
)

// Publisher property fields.
const (
	FieldGridIntensity                    Field = "grid_intensity_g_co2e_per_kwh"
	FieldVisitsPerMonth                   Field = "visits_per_month"
	FieldAverageVisitDurationS            Field = "average_visit_duration_s"
	FieldPagesPerVisit                    Field = "pages_per_visit"
	FieldLoadTimeS                        Field = "load_time_s"
	FieldPageSizeMB                       Field = "page_size_mb"
	FieldQualityImpressionsPerDurationS   Field = "quality_impressions_per_duration_s"
	FieldComputerActiveWatts              Field = "computer_active_electricity_use_watts"
	FieldComputerIdleWatts                Field = "computer_idle_electricity_use_watts"
	FieldTVActiveWatts                    Field = "tv_active_electricity_use_watts"
	FieldTVIdleWatts                      Field = "tv_idle_electricity_use_watts"
	FieldMobileActiveWatts                Field = "mobile_active_electricity_use_watts"
	FieldMobileIdleWatts                  Field = "mobile_idle_electricity_use_watts"
	FieldEndUserDataTransferKWhPerGB      Field = "end_user_data_transfer_electricity_use_kwh_per_gb"
	FieldCoreInternetDataTransferKWhPerGB Field = "core_internet_data_transfer_electricity_use_kwh_per_gb"
	FieldCorporateEmissionsPerImpression  Field = "corporate_emissions_g_co2e_per_impression"
)

// End-user device fields.
const (
	FieldProductionEmissionsPerDurationS Field = "production_emissions_gco2e_per_duration_s"
	FieldDrawWatts                       Field = "draw_watts"
)

// Networking fields.
const (
	FieldConventionalGenericKWhPerGB Field = "conventional_model_generic_kwh_per_gb"
	FieldPowerModelConstantWatt      Field = "power_model_constant_watt"
	FieldPowerModelVariableWattMbps  Field = "power_model_variable_watt_per_mbps"
	FieldTransmissionRateMbps        Field = "transmission_rate_mbps"
)

// Values holds named decimal quantities. A field is present when its key exists.
type Values map[Field]decimal.Decimal

// Clone returns a shallow copy of v. Cloning a nil map returns an empty map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, d := range v {
		out[k] = d
	}
	return out
}

// SetDefault stores d under f unless f is already present.
func (v Values) SetDefault(f Field, d decimal.Decimal) {
	if _, ok := v[f]; !ok {
		v[f] = d
	}
}

// Only returns the subset of v whose keys are in fields.
func (v Values) Only(fields FieldSet) Values {
	out := make(Values)
	for k, d := range v {
		if fields.Has(k) {
			out[k] = d
		}
	}
	return out
}

// FieldSet is a set of fields.
type FieldSet map[Field]struct{}

// NewFieldSet builds a FieldSet from fields.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the fields in lexical order.
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ATPTemplate is an ad tech platform template.
type ATPTemplate string

const (
	ATPTemplateDSP ATPTemplate = "dsp"
	ATPTemplateSSP ATPTemplate = "ssp"
)

// ATPTemplates lists every ad tech platform template.
var ATPTemplates = []ATPTemplate{ATPTemplateDSP, ATPTemplateSSP}

// OrganizationType selects the corporate defaults template.
type OrganizationType string

const (
	OrganizationGeneric   OrganizationType = "generic"
	OrganizationPublisher OrganizationType = "publisher"
	OrganizationATP       OrganizationType = "atp"
)

// OrganizationTypes lists every organization type.
var OrganizationTypes = []OrganizationType{OrganizationGeneric, OrganizationPublisher, OrganizationATP}

// PropertyChannel is a publisher property channel.
type PropertyChannel string

const (
	ChannelDisplay   PropertyChannel = "display"
	ChannelStreaming PropertyChannel = "streaming"
)

// PropertyChannels lists every property channel.
var PropertyChannels = []PropertyChannel{ChannelDisplay, ChannelStreaming}

// GenericTemplate is the only property template per channel.
const GenericTemplate = "generic"

// Environment is the device class a property is consumed on.
type Environment string

const (
	EnvironmentComputer Environment = "computer"
	EnvironmentMobile   Environment = "mobile"
	EnvironmentTV       Environment = "tv"
)

// EndUserDeviceType is a class of end-user device.
type EndUserDeviceType string

const (
	DevicePersonalComputer EndUserDeviceType = "personal_computer"
	DeviceSmartphone       EndUserDeviceType = "smartphone"
	DeviceTablet           EndUserDeviceType = "tablet"
	DeviceTVSystem         EndUserDeviceType = "tv_system"
)

// EndUserDevices lists every end-user device type.
var EndUserDevices = []EndUserDeviceType{DevicePersonalComputer, DeviceSmartphone, DeviceTablet, DeviceTVSystem}

// ConnectionType is a networking connection type.
type ConnectionType string

const (
	ConnectionUnknown ConnectionType = "unknown"
	ConnectionFixed   ConnectionType = "fixed"
	ConnectionMobile  ConnectionType = "mobile"
)

// ConnectionTypes lists every networking connection type.
var ConnectionTypes = []ConnectionType{ConnectionUnknown, ConnectionFixed, ConnectionMobile}

// StreamingResolution is a streaming quality level.
type StreamingResolution string

const (
	ResolutionLow    StreamingResolution = "low"
	ResolutionMedium StreamingResolution = "medium"
	ResolutionHigh   StreamingResolution = "high"
	ResolutionUltra  StreamingResolution = "ultra"
)

// StreamingResolutions lists every streaming resolution.
var StreamingResolutions = []StreamingResolution{ResolutionLow, ResolutionMedium, ResolutionHigh, ResolutionUltra}

// parseEnum matches s case-insensitively against the allowed values.
func parseEnum[T ~string](kind, s string, allowed []T) (T, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, v := range allowed {
		if string(v) == needle {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidInput, kind, s)
}

// ParseATPTemplate parses an ad tech platform template name.
func ParseATPTemplate(s string) (ATPTemplate, error) {
	return parseEnum("atp template", s, ATPTemplates)
}

// ParseOrganizationType parses an organization type.
func ParseOrganizationType(s string) (OrganizationType, error) {
	return parseEnum("organization type", s, OrganizationTypes)
}

// ParsePropertyChannel parses a property channel.
func ParsePropertyChannel(s string) (PropertyChannel, error) {
	return parseEnum("property channel", s, PropertyChannels)
}

// ParseEnvironment parses a property environment.
func ParseEnvironment(s string) (Environment, error) {
	return parseEnum("environment", s, []Environment{EnvironmentComputer, EnvironmentMobile, EnvironmentTV})
}

// ParseEndUserDevice parses an end-user device type.
func ParseEndUserDevice(s string) (EndUserDeviceType, error) {
	return parseEnum("end user device", s, EndUserDevices)
}

// ParseConnectionType parses a networking connection type.
func ParseConnectionType(s string) (ConnectionType, error) {
	return parseEnum("connection type", s, ConnectionTypes)
}

// ParseStreamingResolution parses a streaming resolution.
func ParseStreamingResolution(s string) (StreamingResolution, error) {
	return parseEnum("streaming resolution", s, StreamingResolutions)
}
