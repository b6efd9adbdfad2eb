package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	DatasetRecords prometheus.Gauge

	// Dashboard dispatch metrics.
	Actions        *prometheus.CounterVec   // labels: action, outcome={success,empty,invalid,error}
	ActionDuration *prometheus.HistogramVec // labels: action

	// Report metrics.
	ReportsGenerated prometheus.Counter
	ReportErrors     prometheus.Counter
	ReportsPublished *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetRecords,
		m.Actions,
		m.ActionDuration,
		m.ReportsGenerated,
		m.ReportErrors,
		m.ReportsPublished,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climatescope",
			Name:      "dataset_records",
			Help:      "Number of weather records in the loaded dataset.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatescope",
			Name:      "actions_total",
			Help:      "Dashboard actions dispatched, by action and outcome.",
		}, []string{"action", "outcome"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climatescope",
			Name:      "action_duration_seconds",
			Help:      "Duration of a dashboard action.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"action"}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatescope",
			Name:      "reports_generated_total",
			Help:      "Total PDF reports written.",
		}),
		ReportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatescope",
			Name:      "report_errors_total",
			Help:      "Total report generation failures, excluding empty selections.",
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatescope",
			Name:      "report_events_total",
			Help:      "Report events published to the message broker, by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatescope",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatescope",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climatescope",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climatescope",
			Name:      "geocode_enabled",
			Help:      "1 when country geocoding is enabled, 0 otherwise.",
		}),
	}
}
