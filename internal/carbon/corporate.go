package carbon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CorporateEligibleFields are the corporate inputs that fall back to
// organization template defaults.
var CorporateEligibleFields = NewFieldSet(
	FieldOfficeEmissionsPerEmployee,
	FieldDatacenterEmissionsPerEmployee,
	FieldTravelEmissionsPerEmployee,
	FieldCommutingEmissionsPerEmployee,
	FieldOverheadEmissionsPerEmployee,
)

// CorporateFields is every input accepted by the corporate model.
var CorporateFields = NewFieldSet(
	FieldOfficeEmissionsPerEmployee,
	FieldDatacenterEmissionsPerEmployee,
	FieldTravelEmissionsPerEmployee,
	FieldCommutingEmissionsPerEmployee,
	FieldOverheadEmissionsPerEmployee,
	FieldCorporateEmissionsMTPerMonth,
	FieldNumberOfEmployees,
)

// perEmployeeFields are summed and scaled by headcount.
var perEmployeeFields = []Field{
	FieldOfficeEmissionsPerEmployee,
	FieldTravelEmissionsPerEmployee,
	FieldDatacenterEmissionsPerEmployee,
	FieldCommutingEmissionsPerEmployee,
	FieldOverheadEmissionsPerEmployee,
}

// Corporate models the overhead emissions of an organization: offices,
// datacenters, travel, commuting and general overhead.
type Corporate struct {
	r *Resolver
}

// ModeledCorporate is the result of the corporate model.
type ModeledCorporate struct {
	EmissionsMTPerMonth decimal.Decimal `json:"corporate_emissions_mt_co2e_per_month" yaml:"corporate_emissions_mt_co2e_per_month"`
	EmissionsGPerMonth  decimal.Decimal `json:"corporate_emissions_g_co2e_per_month" yaml:"corporate_emissions_g_co2e_per_month"`
}

// NewCorporate creates a corporate model from explicit facts and the
// organization template defaults.
func NewCorporate(facts, defaults Values, trace *Trace) *Corporate {
	return &Corporate{r: NewResolver(facts, defaults, CorporateEligibleFields, trace)}
}

// Validate checks that headcount or an explicit monthly total is provided.
func (c *Corporate) Validate() error {
	if !c.r.IsSet(FieldNumberOfEmployees) && !c.r.IsSet(FieldCorporateEmissionsMTPerMonth) {
		return fmt.Errorf("%w: must provide either %s or %s",
			ErrInvalidInput, FieldNumberOfEmployees, FieldCorporateEmissionsMTPerMonth)
	}
	return nil
}

// EmissionsMTPerMonth returns monthly corporate emissions in metric tons CO2e.
// An explicit monthly total wins over the per-employee breakdown.
func (c *Corporate) EmissionsMTPerMonth(depth int) (decimal.Decimal, error) {
	if err := c.Validate(); err != nil {
		return decimal.Zero, err
	}
	if total, ok := c.r.Fact(FieldCorporateEmissionsMTPerMonth); ok {
		c.r.trace.Step(depth-1, FieldCorporateEmissionsMTPerMonth, total, SourceFact)
		c.r.trace.Result(depth, "corporate emissions mt co2e per month", total)
		return total, nil
	}

	employees, _ := c.r.Fact(FieldNumberOfEmployees)
	c.r.trace.Step(depth-1, FieldNumberOfEmployees, employees, SourceFact)
	sum := decimal.Zero
	for _, f := range perEmployeeFields {
		v, err := c.r.Get(f, depth-1)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(v)
	}
	total := employees.Mul(sum)
	c.r.trace.Result(depth, "corporate emissions mt co2e per month", total)
	return total, nil
}

// EmissionsGPerMonth returns monthly corporate emissions in grams CO2e.
func (c *Corporate) EmissionsGPerMonth(depth int) (decimal.Decimal, error) {
	mt, err := c.EmissionsMTPerMonth(depth - 1)
	if err != nil {
		return decimal.Zero, err
	}
	g := mt.Mul(GramsPerMetricTon)
	c.r.trace.Result(depth, "corporate emissions g co2e per month", g)
	return g, nil
}

// Model computes both the metric ton and gram monthly totals.
func (c *Corporate) Model(depth int) (ModeledCorporate, error) {
	mt, err := c.EmissionsMTPerMonth(depth)
	if err != nil {
		return ModeledCorporate{}, err
	}
	return ModeledCorporate{
		EmissionsMTPerMonth: mt,
		EmissionsGPerMonth:  mt.Mul(GramsPerMetricTon),
	}, nil
}
