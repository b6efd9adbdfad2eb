package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Summarize returns the mean of the metric column of records, rounded to two
// decimal places. It fails with ErrEmptySelection when records is empty or no
// record carries the metric, so callers never see NaN.
func Summarize(records []WeatherRecord, metric Metric) (float64, error) {
	values, err := ExtractColumn(records, metric)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 || len(values) == 0 {
		return 0, fmt.Errorf("summarize %s: %w", metric, ErrEmptySelection)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round2(sum / float64(len(values))), nil
}

// Round2 rounds v to two decimal places. Exact halves go to the even digit.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Report is the content of one exported summary document.
type Report struct {
	Country     string    `json:"country"`
	Year        int       `json:"year"`
	Metric      Metric    `json:"metric"`
	Average     float64   `json:"average"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReport summarizes the selected rows into a Report stamped with the domain clock.
func NewReport(records []WeatherRecord, sel FilterSelection) (Report, error) {
	avg, err := Summarize(records, sel.Metric)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Country:     sel.Country,
		Year:        sel.Year,
		Metric:      sel.Metric,
		Average:     avg,
		GeneratedAt: clock.Now().UTC(),
	}, nil
}

// Title is the report heading line.
func (r Report) Title() string {
	return fmt.Sprintf("Climate Report – %s (%d)", r.Country, r.Year)
}

// AverageLine is the report body line.
func (r Report) AverageLine() string {
	return fmt.Sprintf("Average %s: %s", r.Metric, FormatAverage(r.Average))
}

// FormatAverage prints a rounded mean with at least one decimal place,
// e.g. 20 -> "20.0" and 23.456 -> "23.46".
func FormatAverage(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(Round2(v), 'f', -1, 64)
}
