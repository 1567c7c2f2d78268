// Package carbon computes greenhouse-gas emissions attributable to digital
// advertising: corporate overhead, ad tech platform serving infrastructure,
// publisher properties, end-user devices and networking.
//
// Every quantity is a decimal. Inputs are resolved from explicit facts first,
// then from template defaults, and a missing value is an error.
package carbon

import "github.com/shopspring/decimal"

// DivisionPrecision is the number of fractional digits kept by every division.
const DivisionPrecision int32 = 28

var (
	// GramsPerMetricTon converts metric tons CO2e to grams.
	GramsPerMetricTon = decimal.NewFromInt(1_000_000)

	// Billion scales the "billion per month" traffic facts.
	Billion = decimal.NewFromInt(1_000_000_000)

	// SecondsPerHour converts watt-seconds to watt-hours.
	SecondsPerHour = decimal.NewFromInt(3600)

	// BytesPerGB is 1024^3, the binary gigabyte used for bid request sizes.
	BytesPerGB = decimal.NewFromInt(1024 * 1024 * 1024)

	// MBPerGB converts per-GB electricity intensities to per-MB.
	MBPerGB = decimal.NewFromInt(1024)

	// OneHundred converts percentages to rates.
	OneHundred = decimal.NewFromInt(100)

	// OneThousand converts Wh to kWh and kWh to MWh.
	OneThousand = decimal.NewFromInt(1000)

	// DefaultGridIntensity is the grid carbon intensity used for a property
	// when none is supplied, in g CO2e per kWh.
	DefaultGridIntensity = decimal.NewFromInt(539)

	// GlobalBidRequestSizeBytes is the global fallback bid request size.
	GlobalBidRequestSizeBytes = decimal.NewFromInt(10_000)

	// GlobalBidRequestDistributionRate is the global fallback share of bid
	// requests forwarded along a distribution edge.
	GlobalBidRequestDistributionRate = decimal.NewFromInt(1)
)
