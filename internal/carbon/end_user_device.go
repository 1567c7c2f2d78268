package carbon

import "github.com/shopspring/decimal"

// EndUserDeviceFields are the inputs of the end-user device model. Both fall
// back to the device template defaults.
var EndUserDeviceFields = NewFieldSet(
	FieldProductionEmissionsPerDurationS,
	FieldDrawWatts,
)

// ModeledEndUserDevice is the per-impression footprint of a device class for
// one property channel.
type ModeledEndUserDevice struct {
	Device                string          `json:"device" yaml:"device"`
	Channel               string          `json:"channel" yaml:"channel"`
	Template              string          `json:"template" yaml:"template"`
	PowerKWhPerImp        decimal.Decimal `json:"power_kwh_per_imp" yaml:"power_kwh_per_imp"`
	ProductionGCO2ePerImp decimal.Decimal `json:"production_gco2e_per_imp" yaml:"production_gco2e_per_imp"`
}

// EndUserDevice models the embodied and use-phase footprint of a device.
type EndUserDevice struct {
	r *Resolver
}

// NewEndUserDevice creates a device model from facts and device defaults.
func NewEndUserDevice(facts, defaults Values, trace *Trace) *EndUserDevice {
	return &EndUserDevice{r: NewResolver(facts, defaults, EndUserDeviceFields, trace)}
}

// ProductionEmissionsPerImp returns embodied grams CO2e per impression given
// the quality impressions served per second of use.
func (d *EndUserDevice) ProductionEmissionsPerImp(impsPerSecond decimal.Decimal, depth int) (decimal.Decimal, error) {
	perSecond, err := d.r.Get(FieldProductionEmissionsPerDurationS, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	perImp, err := div(perSecond, impsPerSecond, string(FieldQualityImpressionsPerDurationS))
	if err != nil {
		return decimal.Zero, err
	}
	d.r.trace.Result(depth, "production_emissions_gco2e_per_imp", perImp)
	return perImp, nil
}

// PowerKWhPerImp returns use-phase electricity per impression in kWh.
func (d *EndUserDevice) PowerKWhPerImp(impsPerSecond decimal.Decimal, depth int) (decimal.Decimal, error) {
	watts, err := d.r.Get(FieldDrawWatts, depth-1)
	if err != nil {
		return decimal.Zero, err
	}
	wattSeconds, err := div(watts, impsPerSecond, string(FieldQualityImpressionsPerDurationS))
	if err != nil {
		return decimal.Zero, err
	}
	kwh := wattSeconds.DivRound(SecondsPerHour, DivisionPrecision).DivRound(OneThousand, DivisionPrecision)
	d.r.trace.Result(depth, "power_emissions_kwh_per_imp", kwh)
	return kwh, nil
}

// Model models the device for a channel template.
func (d *EndUserDevice) Model(device EndUserDeviceType, channel PropertyChannel, template string, impsPerSecond decimal.Decimal, depth int) (ModeledEndUserDevice, error) {
	power, err := d.PowerKWhPerImp(impsPerSecond, depth)
	if err != nil {
		return ModeledEndUserDevice{}, err
	}
	production, err := d.ProductionEmissionsPerImp(impsPerSecond, depth)
	if err != nil {
		return ModeledEndUserDevice{}, err
	}
	return ModeledEndUserDevice{
		Device:                string(device),
		Channel:               string(channel),
		Template:              template,
		PowerKWhPerImp:        power,
		ProductionGCO2ePerImp: production,
	}, nil
}
