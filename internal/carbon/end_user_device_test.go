package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndUserDevice_Model(t *testing.T) {
	tests := []struct {
		device         EndUserDeviceType
		drawWatts      string
		production     string
		impsPerSecond  string
		wantPower      string
		wantProduction string
	}{
		{DevicePersonalComputer, "53.2", "0.007", "0.1", "0.000147777778", "0.07"},
		{DeviceSmartphone, "0.77", "0.0052", "0.1", "0.000002138889", "0.052"},
		{DeviceTablet, "3", "0.0052", "0.0032", "0.000260416667", "1.625"},
		{DeviceTVSystem, "87.4", "0.01", "0.0032", "0.007586805556", "3.125"},
	}
	for _, tt := range tests {
		t.Run(string(tt.device), func(t *testing.T) {
			d := NewEndUserDevice(nil, Values{
				FieldDrawWatts:                       dec(tt.drawWatts),
				FieldProductionEmissionsPerDurationS: dec(tt.production),
			}, nil)
			m, err := d.Model(tt.device, ChannelDisplay, GenericTemplate, dec(tt.impsPerSecond), 2)
			require.NoError(t, err)
			assert.Equal(t, string(tt.device), m.Device)
			assert.Equal(t, "display", m.Channel)
			assert.Equal(t, "generic", m.Template)
			assertDecimal(t, tt.wantPower, m.PowerKWhPerImp)
			assertDecimal(t, tt.wantProduction, m.ProductionGCO2ePerImp)
		})
	}
}

func TestEndUserDevice_Errors(t *testing.T) {
	d := NewEndUserDevice(nil, Values{FieldDrawWatts: dec("1")}, nil)
	_, err := d.Model(DeviceSmartphone, ChannelDisplay, GenericTemplate, dec("0.1"), 1)
	require.ErrorIs(t, err, ErrMissingValue)

	d = NewEndUserDevice(Values{FieldProductionEmissionsPerDurationS: dec("1")}, Values{FieldDrawWatts: dec("1")}, nil)
	_, err = d.Model(DeviceSmartphone, ChannelDisplay, GenericTemplate, dec("0"), 1)
	require.ErrorIs(t, err, ErrDivisionByZero)
}
