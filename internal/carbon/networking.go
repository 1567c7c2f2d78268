package carbon

import "github.com/shopspring/decimal"

// TransmissionRate is the streaming bitrate of a resolution.
type TransmissionRate struct {
	Name                 string              `json:"name" yaml:"name"`
	Resolution           StreamingResolution `json:"resolution" yaml:"resolution"`
	TransmissionRateMbps decimal.Decimal     `json:"transmission_rate_mbps" yaml:"transmission_rate_mbps"`
}

// NetworkingConnection holds the conventional (per GB) and power (per second)
// networking models for a connection type.
type NetworkingConnection struct {
	ConventionalModelGenericKWhPerGB   *decimal.Decimal                          `json:"conventional_model_generic_kwh_per_gb" yaml:"conventional_model_generic_kwh_per_gb"`
	ConventionalModelKWhPerGBPerDevice map[EndUserDeviceType]decimal.Decimal     `json:"conventional_model_kwh_per_gb_per_device,omitempty" yaml:"conventional_model_kwh_per_gb_per_device,omitempty"`
	StreamingResolutionPerDevice       map[EndUserDeviceType]StreamingResolution `json:"streaming_resolution_per_device,omitempty" yaml:"streaming_resolution_per_device,omitempty"`
	PowerModelConstantWatt             *decimal.Decimal                          `json:"power_model_constant_watt,omitempty" yaml:"power_model_constant_watt,omitempty"`
	PowerModelVariableWattPerMbps      *decimal.Decimal                          `json:"power_model_variable_watt_per_mbps,omitempty" yaml:"power_model_variable_watt_per_mbps,omitempty"`
}

// ModeledDeviceNetworking is the networking footprint of one device on one
// connection type. The power model values are present only when the
// connection has a complete power model and a transmission rate applies.
type ModeledDeviceNetworking struct {
	Device                              string            `json:"device" yaml:"device"`
	ConnectionType                      ConnectionType    `json:"connection_type" yaml:"connection_type"`
	ConventionalModelPowerUsageKWhPerGB decimal.Decimal   `json:"conventional_model_power_usage_kwh_per_gb" yaml:"conventional_model_power_usage_kwh_per_gb"`
	PowerModelEnergyUsageKWhPerSecond   *decimal.Decimal  `json:"power_model_energy_usage_kwh_per_second,omitempty" yaml:"power_model_energy_usage_kwh_per_second,omitempty"`
	PowerModelTransmissionRate          *TransmissionRate `json:"power_model_transmission_rate,omitempty" yaml:"power_model_transmission_rate,omitempty"`
}

// Validate checks the connection has a generic per-GB intensity. Zero is a
// valid intensity.
func (n *NetworkingConnection) Validate() error {
	if n.ConventionalModelGenericKWhPerGB == nil {
		return &MissingValueError{Field: FieldConventionalGenericKWhPerGB}
	}
	return nil
}

// KWhPerGB returns the conventional model intensity for a device, rounded
// half to even at five places. Devices without a specific value use the
// generic intensity.
func (n *NetworkingConnection) KWhPerGB(device EndUserDeviceType) decimal.Decimal {
	if v, ok := n.ConventionalModelKWhPerGBPerDevice[device]; ok {
		return v.RoundBank(5)
	}
	if n.ConventionalModelGenericKWhPerGB == nil {
		return decimal.Zero
	}
	return n.ConventionalModelGenericKWhPerGB.RoundBank(5)
}

// ResolutionFor returns the streaming resolution configured for a device.
func (n *NetworkingConnection) ResolutionFor(device EndUserDeviceType) (StreamingResolution, bool) {
	r, ok := n.StreamingResolutionPerDevice[device]
	return r, ok
}

// PowerKWhPerSecond applies the power model at a transmission rate. It
// returns nil when rate is nil or the power model is incomplete.
func (n *NetworkingConnection) PowerKWhPerSecond(rate *TransmissionRate) *decimal.Decimal {
	if rate == nil || !isSet(n.PowerModelConstantWatt) || !isSet(n.PowerModelVariableWattPerMbps) {
		return nil
	}
	watts := n.PowerModelConstantWatt.Add(n.PowerModelVariableWattPerMbps.Mul(rate.TransmissionRateMbps))
	kwh := watts.DivRound(OneThousand, DivisionPrecision).DivRound(SecondsPerHour, DivisionPrecision)
	return &kwh
}

// ModelDevice models a device on this connection.
func (n *NetworkingConnection) ModelDevice(device EndUserDeviceType, connection ConnectionType, rate *TransmissionRate) ModeledDeviceNetworking {
	out := ModeledDeviceNetworking{
		Device:                              string(device),
		ConnectionType:                      connection,
		ConventionalModelPowerUsageKWhPerGB: n.KWhPerGB(device),
	}
	if kwh := n.PowerKWhPerSecond(rate); kwh != nil {
		out.PowerModelEnergyUsageKWhPerSecond = kwh
		r := *rate
		out.PowerModelTransmissionRate = &r
	}
	return out
}

func isSet(d *decimal.Decimal) bool {
	return d != nil && !d.IsZero()
}
