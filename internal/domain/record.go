package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Column names of the weather dataset.
const (
	ColCountry         = "Country"
	ColYear            = "Year"
	ColMonth           = "Month"
	ColTemperature     = "Temperature"
	ColHumidity        = "Humidity"
	ColWindSpeed       = "WindSpeed"
	ColPrecipitation   = "Precipitation"
	ColAirQualityIndex = "AirQualityIndex"
	ColLatitude        = "Latitude"
	ColLongitude       = "Longitude"
)

// RequiredColumns lists the columns every dataset source must provide.
var RequiredColumns = []string{
	ColCountry, ColYear, ColMonth,
	ColTemperature, ColHumidity, ColWindSpeed, ColPrecipitation, ColAirQualityIndex,
}

// WeatherRecord is one row of the cleaned weather dataset.
// Readings are nil when the source cell was empty or not a number.
type WeatherRecord struct {
	Country         string   `json:"country"`
	Year            int      `json:"year"`
	Month           string   `json:"month"`
	Temperature     *float64 `json:"temperature,omitempty"`      // °C
	Humidity        *float64 `json:"humidity,omitempty"`         // percent, 0–100
	WindSpeed       *float64 `json:"wind_speed,omitempty"`       // non-negative
	Precipitation   *float64 `json:"precipitation,omitempty"`    // non-negative
	AirQualityIndex *float64 `json:"air_quality_index,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location returns the record coordinates when both are present.
func (r WeatherRecord) Location() (Geo, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Geo{}, false
	}
	return Geo{Lat: *r.Latitude, Lon: *r.Longitude}, true
}

// MonthNumber resolves the Month cell to 1–12. It accepts ordinals ("3", "03")
// and English month names or three-letter abbreviations. Returns 0 when the
// value cannot be resolved.
func (r WeatherRecord) MonthNumber() int {
	return ParseMonth(r.Month)
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// ParseMonth maps a month ordinal or name to 1–12, or 0 when unrecognized.
func ParseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	// Accept "1.0" style ordinals written by float-typed exports.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		if float64(n) == f && n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	for i, name := range monthNames {
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return i + 1
		}
	}
	return 0
}

// Dataset is the immutable, load-once weather table. It is created by a
// loader and shared read-only by every component afterwards.
type Dataset struct {
	records []WeatherRecord
}

// NewDataset takes ownership of a deep copy of records, so later writes
// through the caller's reading pointers do not reach the table.
func NewDataset(records []WeatherRecord) *Dataset {
	return &Dataset{records: cloneRecords(records)}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a deep copy of the records in load order. Readings in the
// copy do not alias the table.
func (d *Dataset) Records() []WeatherRecord {
	if d == nil {
		return nil
	}
	return cloneRecords(d.records)
}

func cloneRecords(in []WeatherRecord) []WeatherRecord {
	out := make([]WeatherRecord, len(in))
	for i, r := range in {
		out[i] = r.clone()
	}
	return out
}

func (r WeatherRecord) clone() WeatherRecord {
	r.Temperature = cloneFloat(r.Temperature)
	r.Humidity = cloneFloat(r.Humidity)
	r.WindSpeed = cloneFloat(r.WindSpeed)
	r.Precipitation = cloneFloat(r.Precipitation)
	r.AirQualityIndex = cloneFloat(r.AirQualityIndex)
	r.Latitude = cloneFloat(r.Latitude)
	r.Longitude = cloneFloat(r.Longitude)
	return r
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

// each calls fn for every record without copying the table.
func (d *Dataset) each(fn func(WeatherRecord)) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		fn(r)
	}
}

// Countries returns the distinct country names in ascending order.
func (d *Dataset) Countries() []string {
	seen := make(map[string]struct{})
	var out []string
	d.each(func(r WeatherRecord) {
		if _, ok := seen[r.Country]; ok {
			return
		}
		seen[r.Country] = struct{}{}
		out = append(out, r.Country)
	})
	slices.Sort(out)
	return out
}

// Years returns the distinct years in ascending order.
func (d *Dataset) Years() []int {
	seen := make(map[int]struct{})
	var out []int
	d.each(func(r WeatherRecord) {
		if _, ok := seen[r.Year]; ok {
			return
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	})
	slices.Sort(out)
	return out
}

// Float returns a pointer to v, for building optional readings.
func Float(v float64) *float64 {
	return &v
}
