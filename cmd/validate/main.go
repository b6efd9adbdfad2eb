// Command validate checks a cleaned weather dataset before it is served:
// schema, value ranges, coordinates, and comfort-index coverage.
//
// Usage:
//
//	go run ./cmd/validate -data data/weather_cleaned.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/climatescope/internal/dataset"
	"github.com/couchcryptid/climatescope/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// bounds is an inclusive plausible range for a reading.
type bounds struct {
	col      string
	min, max float64
	value    func(domain.WeatherRecord) *float64
}

var ranges = []bounds{
	{domain.ColTemperature, -90, 60, func(r domain.WeatherRecord) *float64 { return r.Temperature }},
	{domain.ColHumidity, 0, 100, func(r domain.WeatherRecord) *float64 { return r.Humidity }},
	{domain.ColWindSpeed, 0, 500, func(r domain.WeatherRecord) *float64 { return r.WindSpeed }},
	{domain.ColPrecipitation, 0, 3000, func(r domain.WeatherRecord) *float64 { return r.Precipitation }},
	{domain.ColAirQualityIndex, 0, 1000, func(r domain.WeatherRecord) *float64 { return r.AirQualityIndex }},
}

func main() {
	path := flag.String("data", "data/weather_cleaned.csv", "path to the cleaned weather CSV")
	flag.Parse()

	os.Exit(run(*path))
}

func run(path string) int {
	fmt.Println("=== Weather Dataset Validation ===")
	fmt.Println()

	d, err := dataset.LoadCSV(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: schema: %v\n", err)
		return 1
	}
	records := d.Records()

	phases := []*phase{
		validateSchema(records),
		validateRanges(records),
		validateCoordinates(records),
		validateComfortCoverage(d),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d rows, %d countries, %d years\n", d.Len(), len(d.Countries()), len(d.Years()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Schema ──
// Columns are checked by the loader; rows must have a usable month.

func validateSchema(records []domain.WeatherRecord) *phase {
	p := &phase{name: "Phase 1: Schema (columns, months)"}
	if len(records) == 0 {
		p.errorf("dataset has no rows")
	}
	for i, r := range records {
		if r.MonthNumber() == 0 {
			p.errorf("row %d (%s %d): unrecognized month %q", i+1, r.Country, r.Year, r.Month)
		}
	}
	return p
}

// ── Phase 2: Value Ranges ──

func validateRanges(records []domain.WeatherRecord) *phase {
	p := &phase{name: "Phase 2: Value Ranges"}
	for i, r := range records {
		for _, b := range ranges {
			v := b.value(r)
			if v == nil {
				continue
			}
			if *v < b.min || *v > b.max {
				p.errorf("row %d (%s %d): %s=%g outside [%g, %g]", i+1, r.Country, r.Year, b.col, *v, b.min, b.max)
			}
		}
	}
	return p
}

// ── Phase 3: Coordinates ──

func validateCoordinates(records []domain.WeatherRecord) *phase {
	p := &phase{name: "Phase 3: Coordinates"}
	for i, r := range records {
		if (r.Latitude == nil) != (r.Longitude == nil) {
			p.errorf("row %d (%s): only one of latitude/longitude present", i+1, r.Country)
			continue
		}
		geo, ok := r.Location()
		if !ok {
			continue
		}
		if geo.Lat < -90 || geo.Lat > 90 || geo.Lon < -180 || geo.Lon > 180 {
			p.errorf("row %d (%s): coordinate (%g, %g) out of range", i+1, r.Country, geo.Lat, geo.Lon)
		}
	}
	return p
}

// ── Phase 4: Comfort Coverage ──
// Every country must have at least one scorable row to appear in rankings.

func validateComfortCoverage(d *domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Comfort Index Coverage"}

	scorable := make(map[string]int)
	for _, r := range d.Records() {
		if _, ok := domain.ComfortIndex(r); ok {
			scorable[r.Country]++
		}
	}
	for _, c := range d.Countries() {
		if scorable[c] == 0 {
			p.errorf("%s: no row has temperature, humidity and air quality together", c)
		}
	}
	return p
}
