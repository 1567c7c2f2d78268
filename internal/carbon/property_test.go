package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func displayDefaults() Values {
	return Values{
		FieldQualityImpressionsPerDurationS:   dec("0.1"),
		FieldComputerActiveWatts:              dec("30"),
		FieldComputerIdleWatts:                dec("10"),
		FieldTVActiveWatts:                    dec("100"),
		FieldTVIdleWatts:                      dec("80"),
		FieldEndUserDataTransferKWhPerGB:      dec("0.1"),
		FieldCoreInternetDataTransferKWhPerGB: dec("0.02"),
		FieldCorporateEmissionsPerImpression:  dec("0.5"),
	}
}

func sitePropertyFacts() Values {
	return Values{
		FieldVisitsPerMonth:        dec("1000"),
		FieldAverageVisitDurationS: dec("60"),
		FieldPagesPerVisit:         dec("3"),
		FieldLoadTimeS:             dec("2"),
		FieldPageSizeMB:            dec("3"),
	}
}

func TestProperty_Model(t *testing.T) {
	p, err := NewProperty("", sitePropertyFacts(), displayDefaults(), nil)
	require.NoError(t, err)

	m, err := p.Model("news.example", 2)
	require.NoError(t, err)
	assert.Equal(t, "news.example", m.Identifier)
	assertDecimal(t, "6000", m.Impressions)

	require.NotNil(t, m.PageLoadElectricityKWh)
	require.NotNil(t, m.DataTransferElectricityKWh)
	require.NotNil(t, m.ClientDeviceEmissionsPerImpG)
	require.NotNil(t, m.CorporateEmissionsPerImpressionG)
	// (6 s x 30 W + 54 s x 10 W) / 3600 = 0.2 Wh per visit over 6 ads
	assertDecimal(t, "0.000033333333", *m.PageLoadElectricityKWh)
	// 0.5 MB x 0.12 kWh/GB / 1024
	assertDecimal(t, "0.00005859375", *m.DataTransferElectricityKWh)
	assertDecimal(t, "0.049548697917", *m.ClientDeviceEmissionsPerImpG)
	assertDecimal(t, "0.5", *m.CorporateEmissionsPerImpressionG)
}

func TestProperty_Components(t *testing.T) {
	p, err := NewProperty(EnvironmentComputer, sitePropertyFacts(), displayDefaults(), nil)
	require.NoError(t, err)

	ads, err := p.AdsPerVisit(0)
	require.NoError(t, err)
	assertDecimal(t, "6", ads)

	active, err := p.ActivePageLoadTime(0)
	require.NoError(t, err)
	assertDecimal(t, "6", active)

	browse, err := p.BrowseTime(0)
	require.NoError(t, err)
	assertDecimal(t, "54", browse)

	wh, err := p.PageLoadEnergyWh(0)
	require.NoError(t, err)
	assertDecimal(t, "0.2", wh)

	mb, err := p.DataTransferMBPerImp(0)
	require.NoError(t, err)
	assertDecimal(t, "0.5", mb)

	perMB, err := p.ElectricityPerMB(0)
	require.NoError(t, err)
	assertDecimal(t, "0.0001171875", perMB)

	client, err := p.ClientDeviceEmissionsPerImp(0)
	require.NoError(t, err)
	assertDecimal(t, "0.049548697917", client)
}

func TestProperty_GridIntensity(t *testing.T) {
	facts := sitePropertyFacts()
	facts[FieldGridIntensity] = dec("100")
	p, err := NewProperty(EnvironmentComputer, facts, displayDefaults(), nil)
	require.NoError(t, err)

	m, err := p.Model("clean.example", 1)
	require.NoError(t, err)
	require.NotNil(t, m.ClientDeviceEmissionsPerImpG)
	assertDecimal(t, "0.009192708333", *m.ClientDeviceEmissionsPerImpG)
}

func TestProperty_Environments(t *testing.T) {
	t.Run("tv uses tv watts", func(t *testing.T) {
		p, err := NewProperty(EnvironmentTV, sitePropertyFacts(), displayDefaults(), nil)
		require.NoError(t, err)
		wh, err := p.PageLoadEnergyWh(0)
		require.NoError(t, err)
		// (6 x 100 + 54 x 80) / 3600
		assertDecimal(t, "1.366666667", wh)
	})

	t.Run("mobile watts missing", func(t *testing.T) {
		p, err := NewProperty(EnvironmentMobile, sitePropertyFacts(), displayDefaults(), nil)
		require.NoError(t, err)
		_, err = p.Model("app", 1)
		require.ErrorIs(t, err, ErrMissingValue)
		assert.Contains(t, err.Error(), string(FieldMobileActiveWatts))
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := NewProperty("watch", nil, nil, nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestProperty_NoLoadTime(t *testing.T) {
	facts := sitePropertyFacts()
	delete(facts, FieldLoadTimeS)
	delete(facts, FieldPageSizeMB)
	defaults := displayDefaults()
	delete(defaults, FieldCorporateEmissionsPerImpression)

	p, err := NewProperty(EnvironmentComputer, facts, defaults, nil)
	require.NoError(t, err)
	m, err := p.Model("ctv.example", 1)
	require.NoError(t, err)

	assertDecimal(t, "6000", m.Impressions)
	assert.Nil(t, m.PageLoadElectricityKWh)
	assert.Nil(t, m.DataTransferElectricityKWh)
	assert.Nil(t, m.ClientDeviceEmissionsPerImpG)
	assert.Nil(t, m.CorporateEmissionsPerImpressionG)
}

func TestModelPublisher(t *testing.T) {
	small := sitePropertyFacts()
	small[FieldAverageVisitDurationS] = dec("40")
	props := []PublisherProperty{
		{Identifier: "big.example", Facts: sitePropertyFacts(), Defaults: displayDefaults()},
		{Identifier: "small.example", Facts: small, Defaults: displayDefaults()},
	}

	tests := []struct {
		name      string
		corporate PublisherCorporate
		want      string
	}{
		{name: "template default", want: "0.5"},
		{name: "monthly grams by impressions", corporate: PublisherCorporate{EmissionsG: decPtr("1000"), PerImpression: decPtr("7")}, want: "0.1"},
		{name: "per impression", corporate: PublisherCorporate{PerImpression: decPtr("0.25")}, want: "0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modeled, err := ModelPublisher(props, tt.corporate, nil, 1)
			require.NoError(t, err)
			require.Len(t, modeled, 2)
			assertDecimal(t, "6000", modeled[0].Impressions)
			assertDecimal(t, "4000", modeled[1].Impressions)
			for _, m := range modeled {
				require.NotNil(t, m.CorporateEmissionsPerImpressionG)
				assertDecimal(t, tt.want, *m.CorporateEmissionsPerImpressionG, m.Identifier)
			}
		})
	}
}

func TestModelPublisher_PropagatesErrors(t *testing.T) {
	_, err := ModelPublisher([]PublisherProperty{{Identifier: "empty.example"}}, PublisherCorporate{}, nil, 1)
	require.ErrorIs(t, err, ErrMissingValue)
	assert.Contains(t, err.Error(), "empty.example")

	zero := sitePropertyFacts()
	zero[FieldVisitsPerMonth] = dec("0")
	_, err = ModelPublisher(
		[]PublisherProperty{{Identifier: "zero.example", Facts: zero, Defaults: displayDefaults()}},
		PublisherCorporate{EmissionsG: decPtr("10")}, nil, 1)
	require.ErrorIs(t, err, ErrDivisionByZero)
}
