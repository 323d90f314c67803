// Package http exposes the reporting engine over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finsight/internal/log"
	"finsight/internal/middleware/trace"
	"finsight/internal/services"
)

type Server struct {
	http.Server
	svc         *services.ReportService
	logger      *log.Logger
	rateLimiter *rateLimiter

	defaultPeriod string
	recentLimit   int

	shutdownOnce sync.Once
}

// Options tunes request defaults. Zero values fall back to month and 10.
type Options struct {
	DefaultPeriod     string
	RecentReportLimit int
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.ReportService, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.DefaultPeriod == "" {
		opts.DefaultPeriod = "month"
	}
	if opts.RecentReportLimit <= 0 {
		opts.RecentReportLimit = 10
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		svc:           svc,
		logger:        logger.WithComponent(log.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		defaultPeriod: opts.DefaultPeriod,
		recentLimit:   opts.RecentReportLimit,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/reports", s.withAPIHeaders(s.handleGenerateReport))
	mux.HandleFunc("GET /api/reports", s.withAPIHeaders(s.handleListReports))
	mux.HandleFunc("GET /api/reports/{id}", s.withAPIHeaders(s.handleGetReport))
	mux.HandleFunc("GET /api/dashboard", s.withAPIHeaders(s.handleDashboard))
	mux.HandleFunc("GET /api/insights", s.withAPIHeaders(s.handleInsights))
	mux.HandleFunc("GET /api/budgets/{id}/health", s.withAPIHeaders(s.handleBudgetHealth))
	mux.HandleFunc("GET /api/budgets/{id}/recommendations", s.withAPIHeaders(s.handleBudgetRecommendations))

	// Request tracing wraps the whole mux so every route gets a request ID.
	traced := trace.NewMiddleware(extractClientIP).Middleware(mux)
	s.Server.Handler = traced

	return s
}

// withAPIHeaders adds security headers and rate limiting to API responses.
func (s *Server) withAPIHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		// Report generation is the expensive path; gate POSTs per client.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
