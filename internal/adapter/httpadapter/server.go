// Package httpadapter serves the dashboard JSON API alongside health,
// readiness and metrics endpoints.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climatescope/internal/dashboard"
	"github.com/couchcryptid/climatescope/internal/domain"
)

// Dispatcher runs dashboard actions.
type Dispatcher interface {
	Dispatch(ctx context.Context, a dashboard.Action) (dashboard.Result, error)
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dispatcher
	logger     *slog.Logger
}

// NewServer creates an HTTP server routing /api/* to d.
func NewServer(addr string, d Dispatcher, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: d,
		logger:    logger,
	}

	router.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	router.HandleFunc("/readyz", sharedobs.ReadinessHandler(ready)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/options", s.handleView(dashboard.KindOptions)).Methods(http.MethodGet)
	api.HandleFunc("/trend", s.handleView(dashboard.KindTrend)).Methods(http.MethodGet)
	api.HandleFunc("/monthly", s.handleView(dashboard.KindMonthly)).Methods(http.MethodGet)
	api.HandleFunc("/correlation", s.handleView(dashboard.KindCorrelation)).Methods(http.MethodGet)
	api.HandleFunc("/choropleth", s.handleView(dashboard.KindChoropleth)).Methods(http.MethodGet)
	api.HandleFunc("/ranking", s.handleView(dashboard.KindRanking)).Methods(http.MethodGet)
	api.HandleFunc("/map", s.handleView(dashboard.KindMap)).Methods(http.MethodGet)
	api.HandleFunc("/reports", s.handleCreateReport).Methods(http.MethodPost)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleView serves a read-only view built from query parameters.
func (s *Server) handleView(kind dashboard.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := actionFromQuery(kind, r.URL.Query())
		if err != nil {
			s.writeError(w, err)
			return
		}
		res, err := s.dashboard.Dispatch(r.Context(), action)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view(res))
	}
}

type reportRequest struct {
	Country string `json:"country"`
	Year    int    `json:"year"`
	Metric  string `json:"metric"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: decode body: %w", dashboard.ErrInvalidAction, err))
		return
	}

	res, err := s.dashboard.Dispatch(r.Context(), dashboard.Action{
		Kind: dashboard.KindReport,
		Selection: domain.FilterSelection{
			Country: req.Country,
			Year:    req.Year,
			Metric:  domain.Metric(req.Metric),
		},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Report)
}

func actionFromQuery(kind dashboard.Kind, q url.Values) (dashboard.Action, error) {
	a := dashboard.Action{Kind: kind}
	switch kind {
	case dashboard.KindTrend, dashboard.KindMonthly:
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			return a, fmt.Errorf("%w: year must be an integer", dashboard.ErrInvalidAction)
		}
		a.Selection = domain.FilterSelection{
			Country: q.Get("country"),
			Year:    year,
			Metric:  domain.Metric(q.Get("metric")),
		}
	case dashboard.KindRanking:
		if raw := q.Get("k"); raw != "" {
			k, err := strconv.Atoi(raw)
			if err != nil || k <= 0 {
				return a, fmt.Errorf("%w: k must be a positive integer", dashboard.ErrInvalidAction)
			}
			a.K = k
		}
	}
	return a, nil
}

// view unwraps the populated view of res.
func view(res dashboard.Result) any {
	switch {
	case res.Options != nil:
		return res.Options
	case res.Trend != nil:
		return res.Trend
	case res.Monthly != nil:
		return res.Monthly
	case res.Correlation != nil:
		return res.Correlation
	case res.Choropleth != nil:
		return res.Choropleth
	case res.Ranking != nil:
		return res.Ranking
	case res.Map != nil:
		return res.Map
	case res.Report != nil:
		return res.Report
	default:
		return res
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptySelection):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownMetric),
		errors.Is(err, dashboard.ErrInvalidAction),
		errors.Is(err, dashboard.ErrUnknownAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
		Code:    status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
