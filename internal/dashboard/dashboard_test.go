package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climatescope/internal/dashboard"
	"github.com/couchcryptid/climatescope/internal/domain"
	"github.com/couchcryptid/climatescope/internal/observability"
)

// --- mocks ---

type mockRenderer struct {
	dir     string
	err     error
	reports []domain.Report
}

func (m *mockRenderer) Render(_ context.Context, r domain.Report) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.reports = append(m.reports, r)
	return filepath.Join(m.dir, r.Country+"_report.pdf"), nil
}

type mockPublisher struct {
	err   error
	paths []string
}

func (m *mockPublisher) PublishReport(_ context.Context, _ domain.Report, path string) error {
	if m.err != nil {
		return m.err
	}
	m.paths = append(m.paths, path)
	return nil
}

type mockGeocoder struct {
	results map[string]domain.GeocodingResult
}

func (m *mockGeocoder) LocateCountry(_ context.Context, country string) (domain.GeocodingResult, error) {
	r, ok := m.results[country]
	if !ok {
		return domain.GeocodingResult{}, errors.New("not found")
	}
	return r, nil
}

// --- fixtures ---

var (
	fixedTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	f         = domain.Float
)

type row struct {
	country  string
	year     int
	month    string
	temp     *float64
	humidity *float64
	wind     *float64
	precip   *float64
	aqi      *float64
	lat, lon *float64
}

func (r row) record() domain.WeatherRecord {
	return domain.WeatherRecord{
		Country: r.country, Year: r.year, Month: r.month,
		Temperature: r.temp, Humidity: r.humidity, WindSpeed: r.wind,
		Precipitation: r.precip, AirQualityIndex: r.aqi,
		Latitude: r.lat, Longitude: r.lon,
	}
}

// fixture comfort means (exclude policy): India 69.625, Norway 62.
func fixture() *domain.Dataset {
	rows := []row{
		{"India", 2023, "1", f(18), f(60), f(5), f(10), f(100), f(28.61), f(77.21)},
		{"India", 2023, "2", f(22), f(50), f(6), f(0), f(90), f(28.61), f(77.21)},
		{"India", 2023, "1", f(20), f(70), nil, nil, f(110), nil, nil},
		{"India", 2022, "1", f(15), f(65), f(4), f(5), f(120), f(28.61), f(77.21)},
		{"Norway", 2023, "January", f(-4), f(80), f(15), f(90), f(20), f(59.91), f(10.75)},
		{"Norway", 2023, "Feb", nil, f(78), f(14), f(70), f(22), f(59.91), f(10.75)},
		{"Norway", 2022, "Mar", f(2), nil, f(12), f(60), f(18), nil, nil},
	}
	records := make([]domain.WeatherRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return domain.NewDataset(records)
}

type harness struct {
	dash      *dashboard.Dashboard
	renderer  *mockRenderer
	publisher *mockPublisher
	metrics   *observability.Metrics
}

func newHarness(t *testing.T, s dashboard.Settings) harness {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedTime))
	t.Cleanup(func() { domain.SetClock(nil) })

	h := harness{
		renderer: &mockRenderer{dir: t.TempDir()},
		metrics:  observability.NewMetricsForTesting(),
	}
	h.dash = dashboard.New(fixture(), h.renderer, slog.New(slog.NewTextHandler(io.Discard, nil)), h.metrics, s)
	return h
}

func selection(country string, year int, metric domain.Metric) domain.FilterSelection {
	return domain.FilterSelection{Country: country, Year: year, Metric: metric}
}

// --- tests ---

func TestDispatch_Options(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindOptions})
	require.NoError(t, err)
	require.NotNil(t, res.Options)

	want := &dashboard.SelectorOptions{
		Countries: []string{"India", "Norway"},
		Years:     []int{2022, 2023},
		Metrics:   domain.Metrics,
	}
	if diff := cmp.Diff(want, res.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7.0, testutil.ToFloat64(h.metrics.DatasetRecords))
}

func TestDispatch_Trend(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindTrend,
		Selection: selection("India", 2023, domain.MetricTemperature),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Trend)

	assert.Equal(t, "Temperature Variation by Month in India", res.Trend.Title)
	want := []dashboard.TrendPoint{
		{Month: "1", MonthNumber: 1, Value: f(18)},
		{Month: "2", MonthNumber: 2, Value: f(22)},
		{Month: "1", MonthNumber: 1, Value: f(20)},
	}
	if diff := cmp.Diff(want, res.Trend.Points); diff != "" {
		t.Errorf("trend points mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_TrendKeepsMissingReadings(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindTrend,
		Selection: selection("India", 2023, domain.MetricWindSpeed),
	})
	require.NoError(t, err)
	require.Len(t, res.Trend.Points, 3)
	assert.Nil(t, res.Trend.Points[2].Value)
}

func TestDispatch_TrendNoMatchIsEmpty(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindTrend,
		Selection: selection("india", 2023, domain.MetricTemperature),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Trend.Points)
}

func TestDispatch_Monthly(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindMonthly,
		Selection: selection("India", 2023, domain.MetricTemperature),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Monthly)

	assert.Equal(t, "Average Temperature by Month", res.Monthly.Title)
	want := []dashboard.MonthlyBucket{
		{Month: 1, Mean: 19, Count: 2},
		{Month: 2, Mean: 22, Count: 1},
	}
	if diff := cmp.Diff(want, res.Monthly.Months); diff != "" {
		t.Errorf("monthly buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_MonthlySkipsMissingReadings(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindMonthly,
		Selection: selection("India", 2023, domain.MetricPrecipitation),
	})
	require.NoError(t, err)

	want := []dashboard.MonthlyBucket{
		{Month: 1, Mean: 10, Count: 1},
		{Month: 2, Mean: 0, Count: 1},
	}
	assert.Equal(t, want, res.Monthly.Months)
}

func TestDispatch_Correlation(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindCorrelation})
	require.NoError(t, err)
	require.NotNil(t, res.Correlation)

	require.Len(t, res.Correlation.Points, 5)
	last := res.Correlation.Points[4]
	assert.Equal(t, "Norway", last.Country)
	assert.Equal(t, -4.0, last.Temperature)
	assert.Equal(t, 80.0, last.Humidity)
	assert.Nil(t, res.Correlation.Points[2].WindSpeed)
}

func TestDispatch_Choropleth(t *testing.T) {
	geo := &mockGeocoder{results: map[string]domain.GeocodingResult{
		"India": {Lat: 22.35, Lon: 78.67, Confidence: 1},
	}}
	h := newHarness(t, dashboard.Settings{Geocoder: geo})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindChoropleth})
	require.NoError(t, err)
	require.NotNil(t, res.Choropleth)

	india := &domain.Geo{Lat: 22.35, Lon: 78.67}
	want := []dashboard.ChoroplethFrame{
		{Year: 2022, Cells: []dashboard.ChoroplethCell{
			{Country: "India", Temperature: 15, Count: 1, Centroid: india},
			{Country: "Norway", Temperature: 2, Count: 1},
		}},
		{Year: 2023, Cells: []dashboard.ChoroplethCell{
			{Country: "India", Temperature: 20, Count: 3, Centroid: india},
			{Country: "Norway", Temperature: -4, Count: 1},
		}},
	}
	if diff := cmp.Diff(want, res.Choropleth.Frames, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("choropleth frames mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.GeocodeEnabled))
}

func TestDispatch_ChoroplethWithoutGeocoder(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindChoropleth})
	require.NoError(t, err)
	for _, frame := range res.Choropleth.Frames {
		for _, cell := range frame.Cells {
			assert.Nil(t, cell.Centroid, cell.Country)
		}
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.GeocodeEnabled))
}

func TestDispatch_Ranking(t *testing.T) {
	h := newHarness(t, dashboard.Settings{RankingSize: 5})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindRanking})
	require.NoError(t, err)
	require.NotNil(t, res.Ranking)

	assert.Equal(t, 5, res.Ranking.K)
	assert.Equal(t, domain.MissingExclude, res.Ranking.Policy)
	want := []domain.ComfortEntry{
		{Rank: 1, Country: "India", Score: 69.625},
		{Rank: 2, Country: "Norway", Score: 62},
	}
	if diff := cmp.Diff(want, res.Ranking.Entries, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_RankingExplicitK(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindRanking, K: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ranking.K)
	require.Len(t, res.Ranking.Entries, 1)
	assert.Equal(t, "India", res.Ranking.Entries[0].Country)
}

func TestDispatch_RankingDropCountryPolicy(t *testing.T) {
	h := newHarness(t, dashboard.Settings{MissingPolicy: domain.MissingDropCountry})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindRanking})
	require.NoError(t, err)
	require.Len(t, res.Ranking.Entries, 1)
	assert.Equal(t, "India", res.Ranking.Entries[0].Country)
}

func TestDispatch_Map(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindMap})
	require.NoError(t, err)
	require.NotNil(t, res.Map)

	assert.Equal(t, domain.Geo{Lat: 20, Lon: 0}, res.Map.Center)
	assert.Equal(t, 2, res.Map.Zoom)

	popups := make([]string, 0, len(res.Map.Markers))
	for _, m := range res.Map.Markers {
		popups = append(popups, m.Popup)
	}
	assert.Equal(t, []string{
		"India: 18.0°C",
		"India: 22.0°C",
		"India: 15.0°C",
		"Norway: -4.0°C",
		"Norway: n/a",
	}, popups)
	assert.Equal(t, domain.Geo{Lat: 59.91, Lon: 10.75}, res.Map.Markers[3].Location)
}

func TestDispatch_Report(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindReport,
		Selection: selection("India", 2023, domain.MetricHumidity),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Report)

	want := domain.Report{
		Country:     "India",
		Year:        2023,
		Metric:      domain.MetricHumidity,
		Average:     60,
		GeneratedAt: fixedTime,
	}
	assert.Equal(t, want, res.Report.Report)
	assert.Equal(t, filepath.Join(h.renderer.dir, "India_report.pdf"), res.Report.Path)
	assert.False(t, res.Report.Published)
	require.Len(t, h.renderer.reports, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ReportsGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Actions.WithLabelValues("report", "success")))
}

func TestDispatch_ReportPublishes(t *testing.T) {
	pub := &mockPublisher{}
	h := newHarness(t, dashboard.Settings{Publisher: pub})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindReport,
		Selection: selection("Norway", 2023, domain.MetricTemperature),
	})
	require.NoError(t, err)
	assert.True(t, res.Report.Published)
	assert.Equal(t, -4.0, res.Report.Average)
	assert.Equal(t, []string{res.Report.Path}, pub.paths)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ReportsPublished.WithLabelValues("success")))
}

func TestDispatch_ReportPublishFailureStillSucceeds(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	h := newHarness(t, dashboard.Settings{Publisher: pub})

	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindReport,
		Selection: selection("India", 2023, domain.MetricTemperature),
	})
	require.NoError(t, err)
	assert.False(t, res.Report.Published)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ReportsGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ReportsPublished.WithLabelValues("error")))
}

func TestDispatch_ReportEmptySelection(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	_, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindReport,
		Selection: selection("Atlantis", 2023, domain.MetricTemperature),
	})
	require.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.Empty(t, h.renderer.reports, "nothing written")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Actions.WithLabelValues("report", "empty")))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ReportErrors))
}

func TestDispatch_ReportNoMetricValues(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	_, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindReport,
		Selection: selection("Norway", 2022, domain.MetricHumidity),
	})
	require.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.Empty(t, h.renderer.reports)
}

func TestDispatch_ReportRenderFailure(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})
	h.renderer.err = errors.New("disk full")

	_, err := h.dash.Dispatch(context.Background(), dashboard.Action{
		Kind:      dashboard.KindReport,
		Selection: selection("India", 2023, domain.MetricTemperature),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ReportErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Actions.WithLabelValues("report", "error")))
}

func TestDispatch_InvalidSelections(t *testing.T) {
	tests := []struct {
		name string
		kind dashboard.Kind
		sel  domain.FilterSelection
		want error
	}{
		{"trend unknown metric", dashboard.KindTrend, selection("India", 2023, "temperature"), domain.ErrUnknownMetric},
		{"monthly unknown metric", dashboard.KindMonthly, selection("India", 2023, "AirQualityIndex"), domain.ErrUnknownMetric},
		{"report unknown metric", dashboard.KindReport, selection("India", 2023, ""), domain.ErrUnknownMetric},
		{"trend missing country", dashboard.KindTrend, selection("", 2023, domain.MetricTemperature), dashboard.ErrInvalidAction},
		{"report missing country", dashboard.KindReport, selection("", 2023, domain.MetricTemperature), dashboard.ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, dashboard.Settings{})
			_, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: tt.kind, Selection: tt.sel})
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Actions.WithLabelValues(string(tt.kind), "invalid")))
		})
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})

	_, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: "heatmap"})
	require.ErrorIs(t, err, dashboard.ErrUnknownAction)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Actions.WithLabelValues("unknown", "invalid")))
}

func TestCheckReadiness(t *testing.T) {
	h := newHarness(t, dashboard.Settings{})
	require.NoError(t, h.dash.CheckReadiness(context.Background()))

	empty := dashboard.New(domain.NewDataset(nil), &mockRenderer{}, slog.Default(),
		observability.NewMetricsForTesting(), dashboard.Settings{})
	require.Error(t, empty.CheckReadiness(context.Background()))
}

type blockingGeocoder struct{}

func (blockingGeocoder) LocateCountry(ctx context.Context, _ string) (domain.GeocodingResult, error) {
	<-ctx.Done()
	return domain.GeocodingResult{}, ctx.Err()
}

func TestDispatch_ChoroplethGeocodeBudget(t *testing.T) {
	h := newHarness(t, dashboard.Settings{Geocoder: blockingGeocoder{}, GeocodeBudget: 20 * time.Millisecond})

	start := time.Now()
	res, err := h.dash.Dispatch(context.Background(), dashboard.Action{Kind: dashboard.KindChoropleth})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "lookups stop once the budget is spent")

	require.Len(t, res.Choropleth.Frames, 2)
	for _, f := range res.Choropleth.Frames {
		for _, c := range f.Cells {
			assert.Nil(t, c.Centroid, c.Country)
		}
	}
}
