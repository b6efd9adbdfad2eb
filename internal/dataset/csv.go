// Package dataset loads the cleaned weather table into an immutable
// domain.Dataset.
package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/climatescope/internal/domain"
)

// missingTokens are cell values read as an absent reading.
var missingTokens = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

var columnTypes = map[string]series.Type{
	domain.ColCountry:         series.String,
	domain.ColYear:            series.Int,
	domain.ColMonth:           series.String,
	domain.ColTemperature:     series.Float,
	domain.ColHumidity:        series.Float,
	domain.ColWindSpeed:       series.Float,
	domain.ColPrecipitation:   series.Float,
	domain.ColAirQualityIndex: series.Float,
	domain.ColLatitude:        series.Float,
	domain.ColLongitude:       series.Float,
}

// LoadCSV reads the whole CSV file at path. Any failure to open, parse or
// validate the table is reported as domain.ErrDataUnavailable.
func LoadCSV(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrDataUnavailable, path, err)
	}
	defer f.Close()

	d, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ReadCSV parses a weather table from r.
func ReadCSV(r io.Reader) (*domain.Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(columnTypes),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: parse table: %w", domain.ErrDataUnavailable, df.Err)
	}
	return fromDataFrame(df)
}

func fromDataFrame(df dataframe.DataFrame) (*domain.Dataset, error) {
	names := df.Names()
	if missing := MissingColumns(names); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %v", domain.ErrDataUnavailable, missing)
	}

	n := df.Nrow()
	countries := df.Col(domain.ColCountry)
	years := df.Col(domain.ColYear)
	months := df.Col(domain.ColMonth)
	temps := floats(df, names, domain.ColTemperature, n)
	humidity := floats(df, names, domain.ColHumidity, n)
	wind := floats(df, names, domain.ColWindSpeed, n)
	precip := floats(df, names, domain.ColPrecipitation, n)
	aqi := floats(df, names, domain.ColAirQualityIndex, n)
	lat := floats(df, names, domain.ColLatitude, n)
	lon := floats(df, names, domain.ColLongitude, n)

	records := make([]domain.WeatherRecord, 0, n)
	for i := range n {
		country := countries.Elem(i)
		if country.IsNA() || country.String() == "" {
			return nil, fmt.Errorf("%w: row %d: missing %s", domain.ErrDataUnavailable, i+1, domain.ColCountry)
		}
		yearElem := years.Elem(i)
		if yearElem.IsNA() {
			return nil, fmt.Errorf("%w: row %d: missing or non-integer %s", domain.ErrDataUnavailable, i+1, domain.ColYear)
		}
		year, err := yearElem.Int()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %s: %w", domain.ErrDataUnavailable, i+1, domain.ColYear, err)
		}

		month := ""
		if m := months.Elem(i); !m.IsNA() {
			month = m.String()
		}

		records = append(records, domain.WeatherRecord{
			Country:         country.String(),
			Year:            year,
			Month:           month,
			Temperature:     temps[i],
			Humidity:        humidity[i],
			WindSpeed:       wind[i],
			Precipitation:   precip[i],
			AirQualityIndex: aqi[i],
			Latitude:        lat[i],
			Longitude:       lon[i],
		})
	}
	return domain.NewDataset(records), nil
}

// MissingColumns returns the required columns absent from names.
func MissingColumns(names []string) []string {
	var missing []string
	for _, col := range domain.RequiredColumns {
		if !slices.Contains(names, col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// floats converts a float column to optional readings. An absent optional
// column yields all-nil readings.
func floats(df dataframe.DataFrame, names []string, col string, n int) []*float64 {
	out := make([]*float64, n)
	if !slices.Contains(names, col) {
		return out
	}
	for i, v := range df.Col(col).Float() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = domain.Float(v)
	}
	return out
}
