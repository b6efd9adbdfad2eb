package domain

import "fmt"

// Metric names one of the selectable numeric columns.
type Metric string

const (
	MetricTemperature   Metric = ColTemperature
	MetricHumidity      Metric = ColHumidity
	MetricWindSpeed     Metric = ColWindSpeed
	MetricPrecipitation Metric = ColPrecipitation
)

// Metrics lists the selectable metrics in selector order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricWindSpeed, MetricPrecipitation}

// ParseMetric validates a metric name. Matching is exact and case-sensitive.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Valid reports whether m is one of the four selectable metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricTemperature, MetricHumidity, MetricWindSpeed, MetricPrecipitation:
		return true
	default:
		return false
	}
}

// Value returns the record's reading for m, or nil when absent or m is unknown.
func (m Metric) Value(r WeatherRecord) *float64 {
	switch m {
	case MetricTemperature:
		return r.Temperature
	case MetricHumidity:
		return r.Humidity
	case MetricWindSpeed:
		return r.WindSpeed
	case MetricPrecipitation:
		return r.Precipitation
	default:
		return nil
	}
}

func (m Metric) String() string { return string(m) }
