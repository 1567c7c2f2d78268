package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleATPFacts describes a platform processing one billion bid requests a
// month on servers emitting 100 t CO2e a month.
func sampleATPFacts() Values {
	return Values{
		FieldBidRequestsBillionPerMonth:        dec("1"),
		FieldServerEmissionsMTPerMonth:         dec("100"),
		FieldServersProcessingBidRequestsPct:   dec("50"),
		FieldBidRequestSizeBytes:               dec("1073741824"),
		FieldServerToServerEmissionsPerGB:      dec("2"),
		FieldCorporateEmissionsPerBidRequest:   dec("0.01"),
		FieldCookieSyncsPerBidRequest:          dec("2"),
		FieldServersProcessingCookieSyncsPct:   dec("10"),
		FieldBidRequestsFromAdTechPlatformsPct: dec("40"),
		FieldBidRequestsFromPublishersPct:      dec("60"),
		FieldCookieSyncDistributionRatio:       dec("0.5"),
		FieldDatacenterWaterIntensity:          dec("1.8"),
		FieldServerEmissionsPerKWh:             dec("450"),
	}
}

func TestAdTechPlatform_ModelProduct(t *testing.T) {
	a := NewAdTechPlatform(sampleATPFacts(), nil, nil)
	m, err := a.ModelProduct(ProductInput{Name: "Sample DSP", Identifier: "dsp.example"}, 1)
	require.NoError(t, err)

	assert.Equal(t, "Sample DSP", m.Name)
	assert.Equal(t, "dsp.example", m.Identifier)
	// 0.01 corporate + 0.000000002 data transfer + 0.05 server
	assertDecimal(t, "0.060000002", m.PrimaryBidRequestEmissionsGCO2e)
	assertDecimal(t, "0.005", m.PrimaryCookieSyncEmissionsGCO2e)
	require.NotNil(t, m.CorporatePerBidRequestGCO2e)
	assertDecimal(t, "0.01", *m.CorporatePerBidRequestGCO2e)
	require.NotNil(t, m.CookieSyncDistributionRatio)
	assertDecimal(t, "0.5", *m.CookieSyncDistributionRatio)
	assertDecimal(t, "0.6", m.ATPBlockRate)
	assertDecimal(t, "0.4", m.PublisherBlockRate)
	assert.Nil(t, m.SecondaryBidRequestEmissionsGCO2e)
	assert.Nil(t, m.SecondaryCookieSyncEmissionsGCO2e)
}

func TestAdTechPlatform_ServerEmissions(t *testing.T) {
	tests := []struct {
		name  string
		extra Values
		want  string
	}{
		{name: "monthly server emissions", want: "100000000"},
		{
			name: "depreciation spend wins",
			extra: Values{
				FieldDepreciationDollarsPerMonth:            dec("1000"),
				FieldServerEmissionsMTPerDollarDepreciation: dec("0.05"),
			},
			want: "50000000",
		},
		{
			name:  "zero depreciation falls back",
			extra: Values{FieldDepreciationDollarsPerMonth: dec("0")},
			want:  "100000000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := sampleATPFacts()
			for k, v := range tt.extra {
				facts[k] = v
			}
			got, err := NewAdTechPlatform(facts, nil, nil).ServerEmissionsGPerMonth(0)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestAdTechPlatform_DataTransferPerBidRequest(t *testing.T) {
	a := NewAdTechPlatform(sampleATPFacts(), nil, nil)
	got, err := a.DataTransferEmissionsPerBidRequest(1)
	require.NoError(t, err)
	assertDecimal(t, "0.000000002", got)

	facts := sampleATPFacts()
	facts[FieldDataTransferEmissionsMTPerMonth] = dec("10")
	got, err = NewAdTechPlatform(facts, nil, nil).DataTransferEmissionsPerBidRequest(1)
	require.NoError(t, err)
	assertDecimal(t, "0.01", got, "measured monthly total is spread over bid requests")
}

func TestAdTechPlatform_CorporatePerBidRequest(t *testing.T) {
	tests := []struct {
		name     string
		facts    Values
		defaults Values
		alloc    CorporateAllocation
		want     string
		wantErr  error
	}{
		{
			name:  "monthly grams allocated by share",
			facts: Values{FieldAllocationOfCorporateEmissionsPct: dec("50")},
			alloc: CorporateAllocation{EmissionsG: decPtr("50000000"), PerBidRequest: decPtr("9")},
			want:  "0.025",
		},
		{
			name:  "supplied per bid request",
			alloc: CorporateAllocation{PerBidRequest: decPtr("0.003")},
			want:  "0.003",
		},
		{
			name: "explicit fact",
			want: "0.01",
		},
		{
			name:     "explicit zero falls back to default",
			facts:    Values{FieldCorporateEmissionsPerBidRequest: dec("0")},
			defaults: Values{FieldCorporateEmissionsPerBidRequest: dec("0.02")},
			want:     "0.02",
		},
		{
			name:     "zero default is missing",
			defaults: Values{FieldCorporateEmissionsPerBidRequest: dec("0")},
			wantErr:  ErrMissingValue,
		},
		{
			name:     "default only",
			defaults: Values{FieldCorporateEmissionsPerBidRequest: dec("0.02")},
			want:     "0.02",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := sampleATPFacts()
			if tt.defaults != nil || tt.facts != nil {
				delete(facts, FieldCorporateEmissionsPerBidRequest)
			}
			for k, v := range tt.facts {
				facts[k] = v
			}
			got, err := NewAdTechPlatform(facts, tt.defaults, nil).CorporateEmissionsPerBidRequest(tt.alloc, 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestAdTechPlatform_MissingCorporate(t *testing.T) {
	facts := sampleATPFacts()
	delete(facts, FieldCorporateEmissionsPerBidRequest)

	_, err := NewAdTechPlatform(facts, nil, nil).ModelProduct(ProductInput{Name: "x"}, 1)
	require.ErrorIs(t, err, ErrMissingValue)
}

func TestAdTechPlatform_DefaultsFillGaps(t *testing.T) {
	facts := sampleATPFacts()
	defaults := Values{}
	for _, f := range []Field{FieldServerEmissionsMTPerMonth, FieldBidRequestsFromPublishersPct, FieldCookieSyncDistributionRatio} {
		defaults[f] = facts[f]
		delete(facts, f)
	}
	// Non-eligible fields never come from defaults.
	defaults[FieldDataTransferEmissionsMTPerMonth] = dec("999")

	m, err := NewAdTechPlatform(facts, defaults, nil).ModelProduct(ProductInput{}, 1)
	require.NoError(t, err)
	assertDecimal(t, "0.060000002", m.PrimaryBidRequestEmissionsGCO2e)
	assertDecimal(t, "0.4", m.PublisherBlockRate)
}

func TestAdTechPlatform_CookieSyncs(t *testing.T) {
	a := NewAdTechPlatform(sampleATPFacts(), nil, nil)
	syncs, err := a.CookieSyncsPerMonth(0)
	require.NoError(t, err)
	assertDecimal(t, "2000000000", syncs)

	facts := sampleATPFacts()
	facts[FieldCookieSyncsBillionPerMonth] = dec("4")
	a = NewAdTechPlatform(facts, nil, nil)
	syncs, err = a.CookieSyncsPerMonth(0)
	require.NoError(t, err)
	assertDecimal(t, "4000000000", syncs)

	perSync, err := a.PrimaryEmissionsPerCookieSync(1)
	require.NoError(t, err)
	assertDecimal(t, "0.0025", perSync)
}

func TestAdTechPlatform_Water(t *testing.T) {
	a := NewAdTechPlatform(sampleATPFacts(), nil, nil)

	perG, err := a.WaterPerGramCO2e(0)
	require.NoError(t, err)
	assertDecimal(t, "0.000004", perG)

	perSync, err := a.WaterPerCookieSync(1)
	require.NoError(t, err)
	assertDecimal(t, "0.00000002", perSync)

	facts := sampleATPFacts()
	facts[FieldServerEmissionsPerKWh] = dec("0")
	_, err = NewAdTechPlatform(facts, nil, nil).WaterPerGramCO2e(0)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAdTechPlatform_ZeroBidRequests(t *testing.T) {
	facts := sampleATPFacts()
	facts[FieldBidRequestsBillionPerMonth] = dec("0")
	_, err := NewAdTechPlatform(facts, nil, nil).ModelProduct(ProductInput{}, 1)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAdTechPlatform_SecondaryEmissions(t *testing.T) {
	partners := []DistributionPartner{
		{
			Partner: ModeledAdTechPlatform{
				PrimaryBidRequestEmissionsGCO2e: dec("0.2"),
				PrimaryCookieSyncEmissionsGCO2e: dec("0.004"),
				ATPBlockRate:                    dec("0.25"),
			},
			BidRequestDistributionRate: dec("0.5"),
		},
		{
			Partner: ModeledAdTechPlatform{
				PrimaryBidRequestEmissionsGCO2e: dec("0.1"),
				PrimaryCookieSyncEmissionsGCO2e: dec("0.006"),
			},
			BidRequestDistributionRate: dec("1"),
		},
	}

	assertDecimal(t, "0.175", SecondaryEmissionsPerBidRequest(partners, nil, 1))
	assert.True(t, SecondaryEmissionsPerBidRequest(nil, nil, 1).IsZero())

	m, err := NewAdTechPlatform(sampleATPFacts(), nil, nil).ModelProduct(ProductInput{Partners: partners}, 1)
	require.NoError(t, err)
	require.NotNil(t, m.SecondaryBidRequestEmissionsGCO2e)
	require.NotNil(t, m.SecondaryCookieSyncEmissionsGCO2e)
	assertDecimal(t, "0.175", *m.SecondaryBidRequestEmissionsGCO2e)
	assertDecimal(t, "0.005", *m.SecondaryCookieSyncEmissionsGCO2e)
}
