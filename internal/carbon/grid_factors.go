package carbon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// gridIntensityByRegion maps cloud datacenter regions to grid carbon
// intensity in g CO2e per kWh.
//
// Source: Cloud Carbon Footprint methodology
// Reference: https://www.cloudcarbonfootprint.org/docs/methodology
//
// To update these values, run:
//
//	go run ./tools/update-grid-factors
var gridIntensityByRegion = map[string]decimal.Decimal{
	"ap-northeast-1": decimal.RequireFromString("506"),   // Tokyo
	"ap-south-1":     decimal.RequireFromString("708"),   // Mumbai
	"ap-southeast-1": decimal.RequireFromString("408"),   // Singapore
	"ap-southeast-2": decimal.RequireFromString("790"),   // Sydney
	"ca-central-1":   decimal.RequireFromString("120"),   // Canada
	"eu-north-1":     decimal.RequireFromString("8.8"),   // Sweden
	"eu-west-1":      decimal.RequireFromString("278.6"), // Ireland
	"sa-east-1":      decimal.RequireFromString("61.7"),  // São Paulo
	"us-east-1":      decimal.RequireFromString("379"),   // Virginia (SERC)
	"us-east-2":      decimal.RequireFromString("411"),   // Ohio (RFC)
	"us-west-1":      decimal.RequireFromString("322"),   // N. California (WECC)
	"us-west-2":      decimal.RequireFromString("322"),   // Oregon (WECC)
}

// GridIntensity returns the grid carbon intensity of a datacenter region in
// g CO2e per kWh. Region names are matched case-insensitively.
func GridIntensity(region string) (decimal.Decimal, bool) {
	v, ok := gridIntensityByRegion[strings.ToLower(strings.TrimSpace(region))]
	return v, ok
}

// GridRegions returns the known regions.
func GridRegions() []string {
	out := make([]string, 0, len(gridIntensityByRegion))
	for r := range gridIntensityByRegion {
		out = append(out, r)
	}
	return out
}

// ApplyGridRegion sets field from the region's grid intensity unless facts
// already carry an explicit value. It reports whether the region is known.
func ApplyGridRegion(facts Values, field Field, region string) bool {
	v, ok := GridIntensity(region)
	if !ok {
		return false
	}
	facts.SetDefault(field, v)
	return true
}
