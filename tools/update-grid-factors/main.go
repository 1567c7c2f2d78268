// Command update-grid-factors regenerates internal/carbon/grid_factors.go from
// the Cloud Carbon Footprint grid emission factors.
//
// Usage:
//
//	go run ./tools/update-grid-factors [--dry-run] [--output path]
//
// CCF publishes factors in metric tons CO2e per kWh. The generated table holds
// g CO2e per kWh, the unit every datacenter_region lookup expects.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const ccfGridFactorsURL = "https://raw.githubusercontent.com/cloud-carbon-footprint/cloud-carbon-coefficients/main/data/grid-emissions-factors-aws.json"

// maxGramsPerKWh bounds a plausible grid intensity.
var maxGramsPerKWh = decimal.NewFromInt(2000)

var gramsPerMetricTon = decimal.NewFromInt(1_000_000)

// regionLocations names the datacenter regions the table covers.
var regionLocations = map[string]string{
	"us-east-1":      "Virginia (SERC)",
	"us-east-2":      "Ohio (RFC)",
	"us-west-1":      "N. California (WECC)",
	"us-west-2":      "Oregon (WECC)",
	"ca-central-1":   "Canada",
	"eu-west-1":      "Ireland",
	"eu-north-1":     "Sweden",
	"ap-southeast-1": "Singapore",
	"ap-southeast-2": "Sydney",
	"ap-northeast-1": "Tokyo",
	"ap-south-1":     "Mumbai",
	"sa-east-1":      "São Paulo",
}

// fallbackFactors are used when the CCF data cannot be fetched, in metric
// tons CO2e per kWh.
var fallbackFactors = map[string]string{
	"us-east-1":      "0.000379",
	"us-east-2":      "0.000411",
	"us-west-1":      "0.000322",
	"us-west-2":      "0.000322",
	"ca-central-1":   "0.00012",
	"eu-west-1":      "0.0002786",
	"eu-north-1":     "0.0000088",
	"ap-southeast-1": "0.000408",
	"ap-southeast-2": "0.00079",
	"ap-northeast-1": "0.000506",
	"ap-south-1":     "0.000708",
	"sa-east-1":      "0.0000617",
}

// ccfFactor is one entry of the CCF grid factors document.
type ccfFactor struct {
	Region       string          `json:"region"`
	MtCO2ePerKWh decimal.Decimal `json:"mtCO2ePerKwh"`
}

// gridFactor is a region's intensity in g CO2e per kWh.
type gridFactor struct {
	Region   string
	Grams    decimal.Decimal
	Location string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dryRun bool
		output string
		source string
	)

	cmd := &cobra.Command{
		Use:          "update-grid-factors",
		Short:        "Regenerate the datacenter region grid intensity table",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true})

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			factors, err := fetchFactors(ctx, source)
			if err != nil {
				logger.Warn().Err(err).Msg("using fallback grid factors")
				factors, err = fromMetricTons(fallbackFactors)
				if err != nil {
					return err
				}
			}
			if err := validate(factors); err != nil {
				return err
			}

			content := render(factors)
			if dryRun {
				_, err := io.WriteString(cmd.OutOrStdout(), content)
				return err
			}
			if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
				return err
			}
			logger.Info().Str("file", output).Int("regions", len(factors)).Msg("updated grid factors")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the generated file instead of writing it")
	cmd.Flags().StringVar(&output, "output", "./internal/carbon/grid_factors.go", "path of the generated file")
	cmd.Flags().StringVar(&source, "source", ccfGridFactorsURL, "URL of the CCF grid factors document")
	return cmd
}

func fetchFactors(ctx context.Context, url string) ([]gridFactor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch grid factors: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch grid factors: unexpected status %d", resp.StatusCode)
	}
	return decodeFactors(resp.Body)
}

// decodeFactors converts the CCF document, keeping known regions only.
func decodeFactors(r io.Reader) ([]gridFactor, error) {
	var doc []ccfFactor
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode grid factors: %w", err)
	}
	var out []gridFactor
	for _, f := range doc {
		loc, ok := regionLocations[f.Region]
		if !ok {
			continue
		}
		out = append(out, gridFactor{
			Region:   f.Region,
			Grams:    f.MtCO2ePerKWh.Mul(gramsPerMetricTon),
			Location: loc,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decode grid factors: no known regions")
	}
	return out, nil
}

func fromMetricTons(m map[string]string) ([]gridFactor, error) {
	out := make([]gridFactor, 0, len(m))
	for region, s := range m {
		mt, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", region, err)
		}
		out = append(out, gridFactor{
			Region:   region,
			Grams:    mt.Mul(gramsPerMetricTon),
			Location: regionLocations[region],
		})
	}
	return out, nil
}

func validate(factors []gridFactor) error {
	var problems []string
	for _, f := range factors {
		if f.Grams.IsNegative() || f.Grams.GreaterThan(maxGramsPerKWh) {
			problems = append(problems, fmt.Sprintf("%s: %s g CO2e/kWh is outside [0, %s]", f.Region, f.Grams, maxGramsPerKWh))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid grid factors:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

const header = `package carbon

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
`

const footer = `}

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
`

// render produces gofmt-aligned source for the table, sorted by region.
func render(factors []gridFactor) string {
	sort.Slice(factors, func(i, j int) bool { return factors[i].Region < factors[j].Region })

	keyWidth, valWidth := 0, 0
	keys := make([]string, len(factors))
	vals := make([]string, len(factors))
	for i, f := range factors {
		keys[i] = fmt.Sprintf("%q:", f.Region)
		vals[i] = fmt.Sprintf("decimal.RequireFromString(%q),", f.Grams.String())
		keyWidth = max(keyWidth, len(keys[i]))
		valWidth = max(valWidth, len(vals[i]))
	}

	var b bytes.Buffer
	b.WriteString(header)
	for i, f := range factors {
		line := fmt.Sprintf("\t%-*s %-*s", keyWidth, keys[i], valWidth, vals[i])
		if f.Location != "" {
			line += " // " + f.Location
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	b.WriteString(footer)
	return b.String()
}
