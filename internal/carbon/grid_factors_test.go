package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGridIntensity_AllWithinValidRange checks every region is in g CO2e/kWh:
// positive and below the most coal-heavy grids.
func TestGridIntensity_AllWithinValidRange(t *testing.T) {
	upper := dec("2000")
	for _, region := range GridRegions() {
		t.Run(region, func(t *testing.T) {
			v, ok := GridIntensity(region)
			assert.True(t, ok)
			assert.True(t, v.IsPositive(), "%s: %s", region, v)
			assert.True(t, v.LessThan(upper), "%s: %s", region, v)
		})
	}
}

func TestGridIntensity_Lookup(t *testing.T) {
	v, ok := GridIntensity(" US-EAST-1 ")
	assert.True(t, ok)
	assertDecimal(t, "379", v)

	_, ok = GridIntensity("mars-central-1")
	assert.False(t, ok)
}

func TestApplyGridRegion(t *testing.T) {
	facts := Values{}
	assert.True(t, ApplyGridRegion(facts, FieldServerEmissionsPerKWh, "eu-north-1"))
	assertDecimal(t, "8.8", facts[FieldServerEmissionsPerKWh])

	facts = Values{FieldGridIntensity: dec("100")}
	assert.True(t, ApplyGridRegion(facts, FieldGridIntensity, "ap-south-1"))
	assertDecimal(t, "100", facts[FieldGridIntensity], "explicit value wins")

	assert.False(t, ApplyGridRegion(facts, FieldGridIntensity, "nowhere"))
}
