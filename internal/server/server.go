package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/orbit/internal/models"
	"github.com/UnknownOlympus/orbit/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PassFinder runs one full lookup of the upcoming passes.
type PassFinder interface {
	NextPasses(ctx context.Context) ([]models.Pass, error)
}

// Server exposes the tracker over HTTP together with health check and metrics endpoints.
type Server struct {
	log    *slog.Logger
	finder PassFinder
	reg    *prometheus.Registry
	loc    *time.Location
	port   int
}

type passView struct {
	RiseTime    int64  `json:"risetime"`
	Duration    int64  `json:"duration"`
	RiseAt      string `json:"rise_at"`
	Description string `json:"description"`
}

type passesResponse struct {
	Passes []passView `json:"passes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Server. Rise times are described in loc.
func New(log *slog.Logger, finder PassFinder, reg *prometheus.Registry, loc *time.Location, port int) *Server {
	return &Server{log: log, finder: finder, reg: reg, loc: loc, port: port}
}

// Handler returns the HTTP routes served by the Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /passes", s.handlePasses)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	return mux
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	const (
		readTimeout     = 5 * time.Second
		writeTimeout    = 60 * time.Second
		shutdownTimeout = 10 * time.Second
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", s.port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.InfoContext(ctx, "Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) handlePasses(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	passes, err := s.finder.NextPasses(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Lookup failed", "error", err)
		s.writeJSON(ctx, writer, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	resp := passesResponse{Passes: make([]passView, 0, len(passes))}
	for _, pass := range passes {
		resp.Passes = append(resp.Passes, passView{
			RiseTime:    pass.RiseTime,
			Duration:    pass.Duration,
			RiseAt:      pass.RiseAt().Format(time.RFC3339),
			Description: report.Describe(pass, s.loc),
		})
	}

	s.writeJSON(ctx, writer, http.StatusOK, resp)
}

func (s *Server) handleHealth(writer http.ResponseWriter, req *http.Request) {
	s.log.DebugContext(req.Context(), "Performing health checks...")
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("OK")); err != nil {
		s.log.ErrorContext(req.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) writeJSON(ctx context.Context, writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}
