package domain

// FilterSelection narrows the dataset for per-session views.
type FilterSelection struct {
	Country string `json:"country"`
	Year    int    `json:"year"`
	Metric  Metric `json:"metric"`
}

// FilterByCountryYear returns every record whose Country equals country exactly
// (case-sensitive) and whose Year equals year, in dataset order. No match yields
// an empty slice, not an error. Returned readings do not alias the dataset.
func FilterByCountryYear(d *Dataset, country string, year int) []WeatherRecord {
	out := make([]WeatherRecord, 0)
	d.each(func(r WeatherRecord) {
		if r.Country == country && r.Year == year {
			out = append(out, r.clone())
		}
	})
	return out
}

// ExtractColumn projects the metric column of records. Missing readings are
// skipped, so the result may be shorter than records.
func ExtractColumn(records []WeatherRecord, metric Metric) ([]float64, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v := metric.Value(r); v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}
