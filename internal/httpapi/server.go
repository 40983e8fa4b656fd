package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/endpointmonitor/internal/ledger"
)

// Server exposes the ledger and metrics read-only. It is only started when a
// metrics address is configured.
type Server struct {
	Logger   *zap.Logger
	Ledger   *ledger.Ledger
	Gatherer prometheus.Gatherer
	Health   func(context.Context) error
}

func NewServer(l *zap.Logger, lg *ledger.Ledger, g prometheus.Gatherer, health func(context.Context) error) *Server {
	if health == nil {
		health = func(context.Context) error { return nil }
	}
	return &Server{Logger: l, Ledger: lg, Gatherer: g, Health: health}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/api/availability", s.handleAvailability)
	r.Get("/api/availability/{domain}", s.handleDomain)

	return r
}

// Start serves on addr in the background. Use Shutdown on the returned
// server to stop it.
func (s *Server) Start(addr string) *http.Server {
	hs := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	go func() {
		s.Logger.Info("status_listen", zap.String("addr", addr))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("status_server_error", zap.Error(err))
		}
	}()
	return hs
}

type domainAvailability struct {
	Domain  string `json:"domain"`
	Up      int    `json:"up"`
	Total   int    `json:"total"`
	Percent int    `json:"availability_percent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Health(ctx); err != nil {
		http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	domains := s.Ledger.Domains()
	out := make([]domainAvailability, 0, len(domains))
	for _, d := range domains {
		up, total, ok := s.Ledger.Counts(d)
		if !ok {
			continue
		}
		out = append(out, domainAvailability{Domain: d, Up: up, Total: total, Percent: ledger.Percent(up, total)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	d := chi.URLParam(r, "domain")
	up, total, ok := s.Ledger.Counts(d)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown domain"})
		return
	}
	writeJSON(w, http.StatusOK, domainAvailability{Domain: d, Up: up, Total: total, Percent: ledger.Percent(up, total)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
