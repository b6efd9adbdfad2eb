// Package dashboard answers dashboard interactions over a loaded weather
// dataset. Every interaction is an Action value handled by Dispatch.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climatescope/internal/domain"
	"github.com/couchcryptid/climatescope/internal/observability"
)

// ReportRenderer writes a report document and returns its location.
type ReportRenderer interface {
	Render(ctx context.Context, r domain.Report) (string, error)
}

// ReportPublisher announces a generated report downstream.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r domain.Report, path string) error
}

// DefaultGeocodeBudget bounds the centroid lookups of one choropleth request.
const DefaultGeocodeBudget = 10 * time.Second

// Settings tune the dashboard. Geocoder and Publisher are optional.
type Settings struct {
	RankingSize   int
	MissingPolicy domain.MissingPolicy
	Geocoder      domain.Geocoder
	GeocodeBudget time.Duration
	Publisher     ReportPublisher
}

// Dashboard serves views over one immutable dataset.
type Dashboard struct {
	dataset   *domain.Dataset
	renderer  ReportRenderer
	publisher ReportPublisher
	geocoder  domain.Geocoder
	budget    time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	rankingSize int
	policy      domain.MissingPolicy
}

// New creates a Dashboard over dataset. Reports are written through renderer.
func New(dataset *domain.Dataset, renderer ReportRenderer, logger *slog.Logger, metrics *observability.Metrics, s Settings) *Dashboard {
	if s.RankingSize <= 0 {
		s.RankingSize = domain.DefaultRankingSize
	}
	if s.GeocodeBudget <= 0 {
		s.GeocodeBudget = DefaultGeocodeBudget
	}
	if s.MissingPolicy == "" {
		s.MissingPolicy = domain.MissingExclude
	}
	metrics.DatasetRecords.Set(float64(dataset.Len()))
	if s.Geocoder != nil {
		metrics.GeocodeEnabled.Set(1)
	}

	return &Dashboard{
		dataset:     dataset,
		renderer:    renderer,
		publisher:   s.Publisher,
		geocoder:    s.Geocoder,
		budget:      s.GeocodeBudget,
		logger:      logger,
		metrics:     metrics,
		rankingSize: s.RankingSize,
		policy:      s.MissingPolicy,
	}
}

// CheckReadiness returns nil once a non-empty dataset is attached.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if d.dataset.Len() == 0 {
		return errors.New("weather dataset is empty")
	}
	return nil
}

// Dispatch runs a single action and returns its view.
func (d *Dashboard) Dispatch(ctx context.Context, a Action) (Result, error) {
	start := time.Now()
	label := a.Kind.label()

	res, err := d.dispatch(ctx, a)

	d.metrics.ActionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	outcome := classify(err)
	d.metrics.Actions.WithLabelValues(label, outcome).Inc()

	switch outcome {
	case "success":
		d.logger.Debug("action handled", "action", label, "duration", time.Since(start))
	case "empty", "invalid":
		d.logger.Info("action rejected", "action", a.Kind, "outcome", outcome, "error", err)
	default:
		d.logger.Error("action failed", "action", a.Kind, "error", err)
	}
	return res, err
}

func (d *Dashboard) dispatch(ctx context.Context, a Action) (Result, error) {
	res := Result{Kind: a.Kind}

	switch a.Kind {
	case KindOptions:
		res.Options = buildOptions(d.dataset)
	case KindTrend:
		if err := validateSelection(a.Selection); err != nil {
			return Result{}, err
		}
		records := domain.FilterByCountryYear(d.dataset, a.Selection.Country, a.Selection.Year)
		res.Trend = buildTrend(records, a.Selection)
	case KindMonthly:
		if err := validateSelection(a.Selection); err != nil {
			return Result{}, err
		}
		records := domain.FilterByCountryYear(d.dataset, a.Selection.Country, a.Selection.Year)
		res.Monthly = buildMonthly(records, a.Selection)
	case KindCorrelation:
		res.Correlation = buildCorrelation(d.dataset)
	case KindChoropleth:
		res.Choropleth = d.choropleth(ctx)
	case KindRanking:
		k := a.K
		if k <= 0 {
			k = d.rankingSize
		}
		res.Ranking = &RankingView{
			K:       k,
			Policy:  d.policy,
			Entries: domain.RankTopCountries(d.dataset, k, d.policy),
		}
	case KindMap:
		res.Map = buildMap(d.dataset)
	case KindReport:
		view, err := d.generateReport(ctx, a.Selection)
		if err != nil {
			return Result{}, err
		}
		res.Report = view
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return res, nil
}

// generateReport summarizes the selection, renders it and publishes an event.
// An empty selection writes nothing.
func (d *Dashboard) generateReport(ctx context.Context, sel domain.FilterSelection) (*ReportView, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	records := domain.FilterByCountryYear(d.dataset, sel.Country, sel.Year)
	report, err := domain.NewReport(records, sel)
	if err != nil {
		return nil, fmt.Errorf("report %s %d: %w", sel.Country, sel.Year, err)
	}

	path, err := d.renderer.Render(ctx, report)
	if err != nil {
		d.metrics.ReportErrors.Inc()
		return nil, fmt.Errorf("render report: %w", err)
	}
	d.metrics.ReportsGenerated.Inc()
	d.logger.Info("report generated",
		"country", report.Country,
		"year", report.Year,
		"metric", report.Metric,
		"average", report.Average,
		"path", path,
	)

	view := &ReportView{Report: report, Path: path}
	if d.publisher != nil {
		if err := d.publisher.PublishReport(ctx, report, path); err != nil {
			d.metrics.ReportsPublished.WithLabelValues("error").Inc()
			d.logger.Warn("report event publish failed", "path", path, "error", err)
		} else {
			d.metrics.ReportsPublished.WithLabelValues("success").Inc()
			view.Published = true
		}
	}
	return view, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmptySelection):
		return "empty"
	case errors.Is(err, domain.ErrUnknownMetric),
		errors.Is(err, ErrInvalidAction),
		errors.Is(err, ErrUnknownAction):
		return "invalid"
	default:
		return "error"
	}
}

// choropleth builds the map frames, giving up on missing centroids once the
// geocode budget is spent.
func (d *Dashboard) choropleth(ctx context.Context) *ChoroplethView {
	geoCtx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()
	return buildChoropleth(geoCtx, d.dataset, d.geocoder, d.logger)
}
