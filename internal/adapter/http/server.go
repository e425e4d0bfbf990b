// Package http exposes the service's operational endpoints and the station
// API consumed by the dashboard.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lilblessings/White-River-Basin/internal/derive"
	"github.com/lilblessings/White-River-Basin/internal/domain"
	"github.com/lilblessings/White-River-Basin/internal/observability"
	"github.com/lilblessings/White-River-Basin/internal/prefs"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// RecordSource supplies a station's history and its revision counter.
type RecordSource interface {
	Records(station string) []domain.Observation
	Revision(station string) uint64
}

// Options wires the server's collaborators.
type Options struct {
	Addr     string
	Stations []domain.StationConfig
	Records  RecordSource
	Prefs    *prefs.Store
	Cache    *derive.ViewCache
	Metrics  *observability.Metrics
	Ready    ReadinessChecker
	Logger   *slog.Logger
}

// Server exposes health, readiness, metrics, and the station API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	stations     map[string]domain.StationConfig
	stationOrder []string
	records      RecordSource
	prefs        *prefs.Store
	cache        *derive.ViewCache
	metrics      *observability.Metrics
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:   opts.Logger,
		stations: make(map[string]domain.StationConfig, len(opts.Stations)),
		records:  opts.Records,
		prefs:    opts.Prefs,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
	}
	for _, st := range opts.Stations {
		s.stations[st.ID] = st
		s.stationOrder = append(s.stationOrder, st.ID)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(opts.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/stations/{id}", s.handleStation)
	mux.HandleFunc("GET /api/stations/{id}/view", s.handleView)
	mux.HandleFunc("GET /api/stations/{id}/records", s.handleRecords)
	mux.HandleFunc("GET /api/preference/interval", s.handleGetPreference)
	mux.HandleFunc("PUT /api/preference/interval", s.handlePutPreference)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// stationSummary is the list-endpoint shape.
type stationSummary struct {
	ID   string             `json:"id"`
	Name string             `json:"name"`
	Type domain.StationType `json:"type"`
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	out := make([]stationSummary, 0, len(s.stationOrder))
	for _, id := range s.stationOrder {
		st := s.stations[id]
		out = append(out, stationSummary{ID: st.ID, Name: st.Name, Type: st.Type})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	st, ok := s.stations[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	st, ok := s.stations[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
		return
	}

	// The revision must be read before the records snapshot. An ingest
	// landing between the two reads then pairs fresh records with the old
	// revision, a key no later request looks up; the reverse order would
	// cache a pre-ingest snapshot under the new revision and serve it stale.
	revision := s.records.Revision(st.ID)
	records := s.records.Records(st.ID)
	interval := s.resolveInterval(r, records)

	key := derive.CacheKey(st.ID, revision, interval)
	if view, ok := s.cache.Get(key); ok {
		s.metrics.ViewCache.WithLabelValues("hit").Inc()
		writeJSON(w, http.StatusOK, view)
		return
	}
	s.metrics.ViewCache.WithLabelValues("miss").Inc()

	start := time.Now()
	view := derive.BuildView(st, records, interval, time.Now())
	s.metrics.DeriveDuration.Observe(time.Since(start).Seconds())
	s.metrics.ViewsComputed.Inc()

	s.cache.Put(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	st, ok := s.stations[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
		return
	}

	records := s.records.Records(st.ID)
	interval := s.resolveInterval(r, records)
	writeJSON(w, http.StatusOK, domain.FilterByRange(records, interval))
}

// preferencePayload is the wire shape of the interval preference: an
// ISO-8601 pair, matching what the dashboard persists.
type preferencePayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) handleGetPreference(w http.ResponseWriter, _ *http.Request) {
	if iv, ok := s.prefs.LoadInterval(); ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"start":  iv.Start.Format(time.RFC3339),
			"end":    iv.End.Format(time.RFC3339),
			"stored": true,
		})
		return
	}

	iv := domain.DefaultInterval(nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"start":  iv.Start.Format(time.RFC3339),
		"end":    iv.End.Format(time.RFC3339),
		"stored": false,
	})
}

func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	var payload preferencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	iv, err := domain.ParseInterval(payload.Start, payload.End)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.prefs.SaveInterval(iv); err != nil {
		s.logger.Error("save interval preference failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save preference"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveInterval picks the interval for a request: explicit query params,
// then the persisted preference, then the computed default. Corrupt query
// values are logged and skipped rather than rejected, mirroring how the
// dashboard tolerates stale bookmarks.
func (s *Server) resolveInterval(r *http.Request, records []domain.Observation) domain.Interval {
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		iv, err := domain.ParseInterval(q.Get("start"), q.Get("end"))
		if err == nil {
			return iv
		}
		s.logger.Warn("invalid interval query, falling back", "error", err)
	}

	if iv, ok := s.prefs.LoadInterval(); ok {
		return iv
	}
	return domain.DefaultInterval(records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
