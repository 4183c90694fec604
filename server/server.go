// Package server exposes a Recommender over a small JSON HTTP API.
//
//	GET  /                          service status
//	GET  /healthz                   liveness
//	GET  /api/search?q=&limit=      tracks by title or artist
//	GET  /api/recommendations/{id}  similar tracks, best first
//	POST /api/vectorize             feature record -> feature vector
//	GET  /metrics                   Prometheus metrics (optional)
//
// A blank or whitespace-only q is rejected with 400 instead of listing every
// track.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/hupe1980/simili"
	"github.com/hupe1980/simili/metric"
)

// Options configures a Server.
type Options struct {
	// CORSOrigins lists allowed origins. Defaults to "*".
	CORSOrigins []string

	// RateLimit is the number of requests per RateLimitWindow and client IP.
	// 0 disables rate limiting.
	RateLimit       int
	RateLimitWindow time.Duration

	// MaxLimit caps the limit query parameter. 0 means no cap.
	MaxLimit int

	Logger *simili.Logger

	// Metrics records per-route HTTP metrics when set.
	Metrics *metric.Collector

	// MetricsHandler is served at /metrics when set.
	MetricsHandler http.Handler

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultOptions are used by New before applying option functions.
var DefaultOptions = Options{
	CORSOrigins:     []string{"*"},
	RateLimitWindow: time.Minute,
	ReadTimeout:     10 * time.Second,
	WriteTimeout:    30 * time.Second,
	ShutdownTimeout: 15 * time.Second,
}

// Server is the HTTP API.
type Server struct {
	rec    *simili.Recommender
	opts   Options
	logger *simili.Logger
	router chi.Router
}

// New creates a Server for rec.
func New(rec *simili.Recommender, optFns ...func(*Options)) *Server {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = simili.NoopLogger()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		rec:    rec,
		opts:   opts,
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.opts.Metrics != nil {
		r.Use(s.observe)
	}

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimit, s.opts.RateLimitWindow))
		}
		r.Get("/search", s.handleSearch)
		r.Get("/recommendations/{id}", s.handleRecommendations)
		r.Post("/vectorize", s.handleVectorize)
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.opts.Metrics.ObserveHTTP(route, r.Method, status, time.Since(start))
	})
}
