// Package http exposes the planning and reporting API over JSON.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"planboard/internal/cache"
	"planboard/internal/core"
	applog "planboard/internal/log"
	"planboard/internal/middleware/ratelimit"
	"planboard/internal/middleware/security"
	"planboard/internal/middleware/trace"
	"planboard/internal/services"
	"planboard/internal/store"
)

// Server serves the JSON API.
type Server struct {
	http.Server

	entities store.EntityStore
	archive  store.ReportArchive
	reports  *services.ReportService
	progress *services.ProgressService

	// Computed reports cached per scope; any entity write invalidates.
	reportCache  *cache.LRUCache[core.ReportData]
	cacheManager *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// Options tunes server behavior. Zero values pick defaults.
type Options struct {
	ReportCacheTTL    time.Duration
	RequestsPerMinute int
}

// NewServer wires the router, middleware stack, and report cache, returning a
// ready-to-run server.
func NewServer(addr string, entities store.EntityStore, archive store.ReportArchive, reports *services.ReportService, progress *services.ProgressService, opts Options) *Server {
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = ratelimit.DefaultConfig().RequestsPerMinute
	}

	detector := security.NewDetector()

	s := &Server{
		entities:    entities,
		archive:     archive,
		reports:     reports,
		progress:    progress,
		reportCache: cache.NewLRUCache[core.ReportData](32, opts.ReportCacheTTL),
		cacheManager: cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		detector: detector,
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	logger := applog.Default().WithComponent(applog.ComponentHTTP)
	tracer := trace.NewMiddleware(detector.ExtractClientIP, applog.NewStructuredLogger(logger))
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(tracer.Middleware)
	r.Use(applog.Middleware(logger))
	r.Use(applog.RequestIDMiddleware(func(req *http.Request) string {
		return trace.GetRequestID(req.Context())
	}))
	r.Use(headers.Middleware)
	r.Use(chimw.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMutations)

			r.Get("/projects", s.handleListProjects)
			r.Post("/projects", s.handleCreateProject)
			r.Put("/projects/{id}", s.handleUpdateProject)
			r.Delete("/projects/{id}", s.handleDeleteProject)
			r.Put("/projects/{id}/progress", s.handleUpdateProgress)

			r.Get("/budgets", s.handleListBudgets)
			r.Post("/budgets", s.handleCreateBudget)
			r.Get("/expenses", s.handleListExpenses)
			r.Post("/expenses", s.handleCreateExpense)
			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)

			r.Post("/reports", s.handleGenerateReport)
			r.Get("/reports", s.handleListReports)
			r.Get("/reports/preview", s.handlePreviewReport)
			r.Get("/reports/{id}", s.handleGetReport)
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// rateLimitMutations applies per-IP rate limiting to mutating methods and
// rejects requests flagged by the security detector.
func (s *Server) rateLimitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			WriteProblem(w, r, http.StatusBadRequest, "Request rejected")
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				w.Header().Set("Retry-After", "60")
				WriteProblem(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// invalidateReportCache drops every cached report. Entity writes change the
// aggregation input, so all scopes are stale at once.
func (s *Server) invalidateReportCache() {
	s.reportCache.Clear()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.entities.ListProjects(r.Context()); err != nil {
		WriteProblem(w, r, http.StatusServiceUnavailable, "Store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
