// Package server exposes the detector over HTTP for firewall modules that
// run out of process.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	libinjection "github.com/jptosso/libinjection-sqli"
)

// Options configure the HTTP endpoint.
type Options struct {
	Addr            string
	RateLimit       float64 // requests per second, 0 disables
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return o
}

// Server answers classification requests against the registered pattern
// sets. Every set gets its own detector, built once.
type Server struct {
	opts      Options
	registry  *libinjection.Registry
	detectors map[string]*libinjection.Detector
	normalize libinjection.Options
	logger    *logrus.Logger
	metrics   *Metrics
	limiter   *rate.Limiter
	router    *mux.Router
}

// New creates a server. A nil logger discards log output.
func New(reg *libinjection.Registry, detectorOpts libinjection.Options, opts Options, logger *logrus.Logger) (*Server, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	s := &Server{
		opts:      opts.withDefaults(),
		registry:  reg,
		detectors: make(map[string]*libinjection.Detector),
		normalize: detectorOpts,
		logger:    logger,
		metrics:   NewMetrics(),
		router:    mux.NewRouter(),
	}

	for _, name := range reg.Names() {
		table, err := reg.Get(name)
		if err != nil {
			return nil, fmt.Errorf("pattern set %s: %w", name, err)
		}
		s.detectors[name] = libinjection.NewDetector(table, detectorOpts)
	}

	if s.opts.RateLimit > 0 {
		burst := int(s.opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)
	}

	s.router.Use(s.requestID, s.instrument)
	s.router.HandleFunc("/healthz", s.Health).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods("GET")

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.rateLimit)
	s.RegisterRoutes(api)

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
