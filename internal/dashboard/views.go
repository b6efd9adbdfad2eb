package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/climatescope/internal/domain"
)

// Default map viewport.
var (
	MapCenter = domain.Geo{Lat: 20, Lon: 0}
	MapZoom   = 2
)

// SelectorOptions are the values offered by the country, year and metric selectors.
type SelectorOptions struct {
	Countries []string        `json:"countries"`
	Years     []int           `json:"years"`
	Metrics   []domain.Metric `json:"metrics"`
}

// TrendPoint is one record of a country/year line series. Value is nil when
// the record lacks the metric.
type TrendPoint struct {
	Month       string   `json:"month"`
	MonthNumber int      `json:"month_number"`
	Value       *float64 `json:"value"`
}

// TrendView is the metric line chart for one country and year, in dataset order.
type TrendView struct {
	Title     string                 `json:"title"`
	Selection domain.FilterSelection `json:"selection"`
	Points    []TrendPoint           `json:"points"`
}

// MonthlyBucket is the mean of one month's readings.
type MonthlyBucket struct {
	Month int     `json:"month"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// MonthlyView is the per-month bar chart for one country and year.
type MonthlyView struct {
	Title     string                 `json:"title"`
	Selection domain.FilterSelection `json:"selection"`
	Months    []MonthlyBucket        `json:"months"`
}

// CorrelationPoint is one record on the temperature vs humidity scatter.
type CorrelationPoint struct {
	Country     string   `json:"country"`
	Temperature float64  `json:"temperature"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`
}

// CorrelationView covers every record carrying both temperature and humidity.
type CorrelationView struct {
	Title  string             `json:"title"`
	Points []CorrelationPoint `json:"points"`
}

// ChoroplethCell is a country's mean temperature within one year frame.
type ChoroplethCell struct {
	Country     string      `json:"country"`
	Temperature float64     `json:"temperature"`
	Count       int         `json:"count"`
	Centroid    *domain.Geo `json:"centroid,omitempty"`
}

// ChoroplethFrame is one animation frame.
type ChoroplethFrame struct {
	Year  int              `json:"year"`
	Cells []ChoroplethCell `json:"cells"`
}

// ChoroplethView is the animated global temperature map, one frame per year.
type ChoroplethView struct {
	Title  string            `json:"title"`
	Frames []ChoroplethFrame `json:"frames"`
}

// RankingView is the travel-comfort table.
type RankingView struct {
	K       int                   `json:"k"`
	Policy  domain.MissingPolicy  `json:"missing_policy"`
	Entries []domain.ComfortEntry `json:"entries"`
}

// MapMarker is a circle marker for one geolocated record.
type MapMarker struct {
	Country     string     `json:"country"`
	Location    domain.Geo `json:"location"`
	Temperature *float64   `json:"temperature"`
	Popup       string     `json:"popup"`
}

// MapView is the interactive map layer.
type MapView struct {
	Center  domain.Geo  `json:"center"`
	Zoom    int         `json:"zoom"`
	Markers []MapMarker `json:"markers"`
}

// ReportView describes a generated report file.
type ReportView struct {
	domain.Report
	Path      string `json:"path"`
	Published bool   `json:"published"`
}

func buildOptions(d *domain.Dataset) *SelectorOptions {
	return &SelectorOptions{
		Countries: d.Countries(),
		Years:     d.Years(),
		Metrics:   slices.Clone(domain.Metrics),
	}
}

func buildTrend(records []domain.WeatherRecord, sel domain.FilterSelection) *TrendView {
	points := make([]TrendPoint, 0, len(records))
	for _, r := range records {
		points = append(points, TrendPoint{
			Month:       r.Month,
			MonthNumber: r.MonthNumber(),
			Value:       sel.Metric.Value(r),
		})
	}
	return &TrendView{
		Title:     fmt.Sprintf("%s Variation by Month in %s", sel.Metric, sel.Country),
		Selection: sel,
		Points:    points,
	}
}

// buildMonthly averages the metric per calendar month. Rows whose month cannot
// be resolved, or that lack the metric, do not contribute.
func buildMonthly(records []domain.WeatherRecord, sel domain.FilterSelection) *MonthlyView {
	var sums [13]float64
	var counts [13]int
	for _, r := range records {
		m := r.MonthNumber()
		v := sel.Metric.Value(r)
		if m == 0 || v == nil {
			continue
		}
		sums[m] += *v
		counts[m]++
	}

	months := make([]MonthlyBucket, 0, 12)
	for m := 1; m <= 12; m++ {
		if counts[m] == 0 {
			continue
		}
		months = append(months, MonthlyBucket{
			Month: m,
			Mean:  domain.Round2(sums[m] / float64(counts[m])),
			Count: counts[m],
		})
	}
	return &MonthlyView{
		Title:     fmt.Sprintf("Average %s by Month", sel.Metric),
		Selection: sel,
		Months:    months,
	}
}

func buildCorrelation(d *domain.Dataset) *CorrelationView {
	records := d.Records()
	points := make([]CorrelationPoint, 0, len(records))
	for _, r := range records {
		if r.Temperature == nil || r.Humidity == nil {
			continue
		}
		points = append(points, CorrelationPoint{
			Country:     r.Country,
			Temperature: *r.Temperature,
			Humidity:    *r.Humidity,
			WindSpeed:   r.WindSpeed,
		})
	}
	return &CorrelationView{
		Title:  "Temperature vs Humidity Across Countries",
		Points: points,
	}
}

type cellAcc struct {
	sum   float64
	count int
}

func buildChoropleth(ctx context.Context, d *domain.Dataset, geocoder domain.Geocoder, logger *slog.Logger) *ChoroplethView {
	byYear := make(map[int]map[string]*cellAcc)
	for _, r := range d.Records() {
		if r.Temperature == nil {
			continue
		}
		cells, ok := byYear[r.Year]
		if !ok {
			cells = make(map[string]*cellAcc)
			byYear[r.Year] = cells
		}
		acc, ok := cells[r.Country]
		if !ok {
			acc = &cellAcc{}
			cells[r.Country] = acc
		}
		acc.sum += *r.Temperature
		acc.count++
	}

	centroids := domain.LocateCountries(ctx, d.Countries(), geocoder, logger)

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	frames := make([]ChoroplethFrame, 0, len(years))
	for _, y := range years {
		cells := byYear[y]
		countries := make([]string, 0, len(cells))
		for c := range cells {
			countries = append(countries, c)
		}
		slices.Sort(countries)

		frame := ChoroplethFrame{Year: y, Cells: make([]ChoroplethCell, 0, len(countries))}
		for _, c := range countries {
			acc := cells[c]
			cell := ChoroplethCell{
				Country:     c,
				Temperature: domain.Round2(acc.sum / float64(acc.count)),
				Count:       acc.count,
			}
			if geo, ok := centroids[c]; ok {
				cell.Centroid = &geo
			}
			frame.Cells = append(frame.Cells, cell)
		}
		frames = append(frames, frame)
	}
	return &ChoroplethView{
		Title:  "Average Global Temperature Over Years",
		Frames: frames,
	}
}

func buildMap(d *domain.Dataset) *MapView {
	markers := make([]MapMarker, 0)
	for _, r := range d.Records() {
		loc, ok := r.Location()
		if !ok {
			continue
		}
		markers = append(markers, MapMarker{
			Country:     r.Country,
			Location:    loc,
			Temperature: r.Temperature,
			Popup:       popup(r),
		})
	}
	return &MapView{Center: MapCenter, Zoom: MapZoom, Markers: markers}
}

func popup(r domain.WeatherRecord) string {
	if r.Temperature == nil {
		return r.Country + ": n/a"
	}
	return fmt.Sprintf("%s: %s°C", r.Country, formatReading(*r.Temperature))
}

// formatReading prints v with at least one decimal place.
func formatReading(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
