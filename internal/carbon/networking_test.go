package carbon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mobileConnection() NetworkingConnection {
	return NetworkingConnection{
		ConventionalModelGenericKWhPerGB: decPtr("0.14"),
		StreamingResolutionPerDevice: map[EndUserDeviceType]StreamingResolution{
			DeviceSmartphone: ResolutionHigh,
		},
		PowerModelConstantWatt:        decPtr("1.2"),
		PowerModelVariableWattPerMbps: decPtr("1.53"),
	}
}

func highRate() *TransmissionRate {
	return &TransmissionRate{Name: "High", Resolution: ResolutionHigh, TransmissionRateMbps: dec("6.67")}
}

func TestNetworkingConnection_KWhPerGB(t *testing.T) {
	unknown := NetworkingConnection{
		ConventionalModelGenericKWhPerGB: decPtr("0.030"),
		ConventionalModelKWhPerGBPerDevice: map[EndUserDeviceType]decimal.Decimal{
			DeviceSmartphone: dec("0.1400004"),
		},
	}
	assertDecimal(t, "0.14", unknown.KWhPerGB(DeviceSmartphone))
	assertDecimal(t, "0.03", unknown.KWhPerGB(DevicePersonalComputer))
	assert.Equal(t, "0.14", unknown.KWhPerGB(DeviceSmartphone).String())

	c := NetworkingConnection{ConventionalModelGenericKWhPerGB: decPtr("0.123456789")}
	assert.Equal(t, "0.12346", c.KWhPerGB(DeviceTablet).String())
}

func TestNetworkingConnection_KWhPerGBRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0.000025", want: "0.00002"},
		{in: "0.000035", want: "0.00004"},
		{in: "0.123465", want: "0.12346"},
		{in: "0.123475", want: "0.12348"},
		{in: "0.1234651", want: "0.12347"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			generic := NetworkingConnection{ConventionalModelGenericKWhPerGB: decPtr(tt.in)}
			assert.Equal(t, tt.want, generic.KWhPerGB(DeviceTablet).String())

			perDevice := NetworkingConnection{
				ConventionalModelGenericKWhPerGB:   decPtr("1"),
				ConventionalModelKWhPerGBPerDevice: map[EndUserDeviceType]decimal.Decimal{DeviceTablet: dec(tt.in)},
			}
			assert.Equal(t, tt.want, perDevice.KWhPerGB(DeviceTablet).String())
		})
	}
}

func TestNetworkingConnection_PowerModel(t *testing.T) {
	c := mobileConnection()
	got := c.PowerKWhPerSecond(highRate())
	require.NotNil(t, got)
	// (1.2 + 1.53 x 6.67) / 1000 / 3600
	assertDecimal(t, "0.000003168083333", *got)

	fixed := NetworkingConnection{
		ConventionalModelGenericKWhPerGB: decPtr("0.030"),
		PowerModelConstantWatt:           decPtr("9.55"),
		PowerModelVariableWattPerMbps:    decPtr("0.03"),
	}
	got = fixed.PowerKWhPerSecond(highRate())
	require.NotNil(t, got)
	assertDecimal(t, "0.000002708361111", *got)

	assert.Nil(t, c.PowerKWhPerSecond(nil), "no transmission rate")
	incomplete := mobileConnection()
	incomplete.PowerModelVariableWattPerMbps = nil
	assert.Nil(t, incomplete.PowerKWhPerSecond(highRate()))
	incomplete.PowerModelVariableWattPerMbps = decPtr("0")
	assert.Nil(t, incomplete.PowerKWhPerSecond(highRate()), "zero counts as unset")
}

func TestNetworkingConnection_ModelDevice(t *testing.T) {
	c := mobileConnection()

	res, ok := c.ResolutionFor(DeviceSmartphone)
	require.True(t, ok)
	assert.Equal(t, ResolutionHigh, res)
	_, ok = c.ResolutionFor(DeviceTVSystem)
	assert.False(t, ok)

	m := c.ModelDevice(DeviceSmartphone, ConnectionMobile, highRate())
	assert.Equal(t, "smartphone", m.Device)
	assert.Equal(t, ConnectionMobile, m.ConnectionType)
	assertDecimal(t, "0.14", m.ConventionalModelPowerUsageKWhPerGB)
	require.NotNil(t, m.PowerModelEnergyUsageKWhPerSecond)
	require.NotNil(t, m.PowerModelTransmissionRate)
	assert.Equal(t, ResolutionHigh, m.PowerModelTransmissionRate.Resolution)

	c.PowerModelConstantWatt = nil
	m = c.ModelDevice(DeviceSmartphone, ConnectionMobile, highRate())
	assert.Nil(t, m.PowerModelEnergyUsageKWhPerSecond)
	assert.Nil(t, m.PowerModelTransmissionRate, "rate only reported alongside energy")
}

func TestNetworkingConnection_Validate(t *testing.T) {
	c := mobileConnection()
	require.NoError(t, c.Validate())

	var empty NetworkingConnection
	require.ErrorIs(t, empty.Validate(), ErrMissingValue)

	zero := NetworkingConnection{ConventionalModelGenericKWhPerGB: decPtr("0")}
	require.NoError(t, zero.Validate(), "zero is a measured intensity")
	assertDecimal(t, "0", zero.KWhPerGB(DeviceSmartphone))
}
