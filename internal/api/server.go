// Package api serves the emissions models over a JSON REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rshade/adtech-emissions/internal/config"
	"github.com/rshade/adtech-emissions/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

// Server is the REST API.
type Server struct {
	svc      *service.Service
	cors     config.CORS
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics
	mux      *http.ServeMux
}

// New creates a Server with its own metrics registry.
func New(svc *service.Service, cors config.CORS, logger zerolog.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s := &Server{
		svc:      svc,
		cors:     cors,
		logger:   logger.With().Str("component", "api").Logger(),
		registry: reg,
		metrics:  newMetrics(reg),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /healthz", s.handleHealth)

	s.handle("POST /calculate/corporate", s.handleCorporate)
	s.handle("POST /calculate/atp_primary_emissions", s.handleATPPrimary)
	s.handle("POST /calculate/atp_secondary_bid_request_emissions", s.handleATPSecondary)

	s.handle("GET /defaults/atp", s.handleATPDefaults)
	s.handle("GET /defaults/atp/{template}", s.handleATPTemplateDefaults)
	s.handle("GET /defaults/property", s.handlePropertyDefaults)
	s.handle("GET /defaults/property/{channel}", s.handlePropertyChannelDefaults)
	s.handle("GET /defaults/end_user_device", s.handleEndUserDeviceDefaults)
	s.handle("GET /defaults/networking", s.handleNetworkingDefaults)

	s.handle("GET /public_yaml_files/list/{file_type}", s.handleListPublicFiles)
	s.handle("GET /public_yaml_files/parse/corporate/{identifier}", s.handleParseCorporate)

	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// handle registers h under pattern, instrumented with the pattern as route label.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.instrument(pattern, h))
}

// Handler returns the root handler with request IDs and CORS applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withCORS(s.mux))
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("REST API listening")
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("shutdown failed")
			return err
		}
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve REST: %w", err)
	}
}
