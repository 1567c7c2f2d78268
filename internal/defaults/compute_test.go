package defaults

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/facts"
)

func computeFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/dsp.yaml": {Data: []byte(`
template:
  name: dsp
  type: atp
  template: dsp
  server_emissions_g_co2e_per_kwh: 400
  cookie_syncs_processed_per_bid_request: 0.2
`)},
		"templates/ssp.yaml": {Data: []byte(`
template:
  name: ssp
  type: atp
  template: ssp
`)},
		"templates/display.yaml": {Data: []byte(`
template:
  name: display
  type: property
  template: generic
  channel: display
`)},
		"templates/atp-org.yaml": {Data: []byte(`
template:
  name: atp
  type: organization
`)},
		"data/companies/a/a.yaml": {Data: []byte(`
products:
  - name: A
    template: dsp
    facts:
      - bid_requests_processed_billion_per_month: 100
      - server_emissions_g_co2e_per_kwh: 300
properties:
  - identifier: a.example
    template: generic
    channel: display
    facts:
      - quality_impressions_per_duration_s: 0.2
  - identifier: v.example
    template: generic
    channel: streaming
    facts:
      - quality_impressions_per_duration_s: 0.004
`)},
		"data/companies/b/b.yaml": {Data: []byte(`
products:
  - name: B
    template: ssp
    facts:
      - bid_requests_processed_billion_per_month: 50
      - cookie_syncs_processed_per_bid_request: 0.4
`)},
		"data/companies/c/c.yaml": {Data: []byte(`
products:
  - name: C
    template: dsp
    facts:
      - bid_requests_processed_billion_per_month: 200
`)},
	}
}

func loadCompute(t *testing.T) (map[string]Template, facts.Set) {
	t.Helper()
	fsys := computeFS()
	templates, err := LoadTemplates(fsys, "templates/*.yaml")
	require.NoError(t, err)
	set, err := facts.Collect(fsys, "data", zerolog.Nop())
	require.NoError(t, err)
	return templates, set
}

func TestLoadTemplates(t *testing.T) {
	templates, _ := loadCompute(t)
	require.Len(t, templates, 4)

	dsp, ok := templates["dsp-atp"]
	require.True(t, ok)
	assert.Equal(t, "dsp", dsp.Template)
	assert.True(t, dsp.Overrides[carbon.FieldServerEmissionsPerKWh].Equal(dec("400")))

	org, ok := templates["atp-organization"]
	require.True(t, ok)
	assert.Equal(t, "atp", org.Template)

	assert.Equal(t, "display", templates["display-property"].Channel)
}

func TestLoadTemplatesErrors(t *testing.T) {
	tests := map[string]string{
		"no template block": "name: x\n",
		"no name":           "template:\n  type: atp\n",
		"no type":           "template:\n  name: x\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"templates/x.yaml": {Data: []byte(body)}}
			_, err := LoadTemplates(fsys, "templates/*.yaml")
			require.Error(t, err)
			assert.ErrorIs(t, err, carbon.ErrInvalidInput)
			assert.Contains(t, err.Error(), "templates/x.yaml")
		})
	}
}

func TestComputeATP(t *testing.T) {
	templates, set := loadCompute(t)

	out, err := Compute(ModelATP, templates, set)
	require.NoError(t, err)
	require.Len(t, out.Defaults, 2)

	dsp := out.Defaults["dsp"]
	// template-specific average wins over everything
	assert.True(t, dsp[carbon.FieldBidRequestsBillionPerMonth].Equal(dec("150")))
	assert.Len(t, out.Sources["dsp"][carbon.FieldBidRequestsBillionPerMonth], 2)
	assert.True(t, dsp[carbon.FieldServerEmissionsPerKWh].Equal(dec("300")))
	// template override wins over the all-template average
	assert.True(t, dsp[carbon.FieldCookieSyncsPerBidRequest].Equal(dec("0.2")))
	assert.Equal(t, []string{SourceTemplateDefault}, out.Sources["dsp"][carbon.FieldCookieSyncsPerBidRequest])
	// global defaults fill the rest
	assert.True(t, dsp[carbon.FieldBidRequestSizeBytes].Equal(dec("10000")))
	assert.True(t, dsp[carbon.FieldBidRequestDistributionRate].Equal(dec("1")))
	assert.Equal(t, []string{SourceGlobalDefault}, out.Sources["dsp"][carbon.FieldBidRequestSizeBytes])
	assert.NotContains(t, dsp, carbon.FieldServersProcessingBidRequestsPct)

	ssp := out.Defaults["ssp"]
	assert.True(t, ssp[carbon.FieldBidRequestsBillionPerMonth].Equal(dec("50")))
	// all-template average when the template has neither facts nor override
	assert.True(t, ssp[carbon.FieldServerEmissionsPerKWh].Equal(dec("300")))
	assert.Equal(t,
		[]string{"a/a.yaml(dsp) server_emissions_g_co2e_per_kwh: 300"},
		out.Sources["ssp"][carbon.FieldServerEmissionsPerKWh])
}

func TestComputeAllTemplateAverage(t *testing.T) {
	set := facts.Set{
		string(carbon.FieldBidRequestsBillionPerMonth): {
			{Template: "dsp", Value: dec("1"), Key: string(carbon.FieldBidRequestsBillionPerMonth)},
			{Template: "dsp", Value: dec("2"), Key: string(carbon.FieldBidRequestsBillionPerMonth)},
			{Template: "dsp", Value: dec("2"), Key: string(carbon.FieldBidRequestsBillionPerMonth)},
		},
	}
	templates := map[string]Template{"ssp-atp": {Name: "ssp", Type: ModelATP, Template: "ssp"}}

	out, err := Compute(ModelATP, templates, set)
	require.NoError(t, err)
	got := out.Defaults["ssp"][carbon.FieldBidRequestsBillionPerMonth]
	assert.Equal(t, "1.666666667", got.Round(9).String())
}

func TestComputePropertyMatchesChannel(t *testing.T) {
	templates, set := loadCompute(t)

	out, err := Compute(ModelProperty, templates, set)
	require.NoError(t, err)
	require.Len(t, out.Defaults, 1)
	display := out.Defaults["display"]
	assert.True(t, display[carbon.FieldQualityImpressionsPerDurationS].Equal(dec("0.2")))
	assert.Len(t, out.Sources["display"][carbon.FieldQualityImpressionsPerDurationS], 1)
}

func TestComputeOrganizationWithoutFacts(t *testing.T) {
	templates, set := loadCompute(t)

	out, err := Compute(ModelOrganization, templates, set)
	require.NoError(t, err)
	require.Contains(t, out.Defaults, "atp")
	assert.Empty(t, out.Defaults["atp"])
}

func TestComputeUnknownModel(t *testing.T) {
	_, err := Compute("broadcast", nil, nil)
	assert.ErrorIs(t, err, carbon.ErrInvalidInput)
}

func TestComputedYAML(t *testing.T) {
	templates, set := loadCompute(t)
	out, err := Compute(ModelATP, templates, set)
	require.NoError(t, err)

	data, err := out.YAML()
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, "defaults:\n"))
	assert.Contains(t, s, "bid_requests_processed_billion_per_month: 150.000000000")
	assert.Contains(t, s, "sources:\n")
	assert.Contains(t, s, "- global default")

	doc, err := facts.Decode(strings.NewReader(s))
	require.NoError(t, err)
	defs := doc["defaults"].(map[string]any)
	dsp := defs["dsp"].(map[string]any)
	v, ok := facts.AsDecimal(dsp["bid_request_size_in_bytes"])
	require.True(t, ok)
	assert.True(t, v.Equal(dec("10000")))
}
