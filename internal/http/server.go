// Package http exposes the time tracking and invoicing JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tempo/internal/cache"
	applog "tempo/internal/log"
	"tempo/internal/report"
	"tempo/internal/services"
	"tempo/internal/storage"
)

type Server struct {
	http.Server
	repo        *storage.Repository
	invoices    *services.InvoiceService
	importer    *services.ImportService
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logger      *applog.Logger

	// Report summaries are cached per date range; any write invalidates.
	reportCache  *cache.LRUCache[report.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, invoices *services.InvoiceService, importer *services.ImportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:         repo,
		invoices:     invoices,
		importer:     importer,
		rateLimiter:  newRateLimiter(),
		metrics:      &securityMetrics{},
		logger:       applog.New(applog.Config{Component: applog.ComponentHTTP}),
		reportCache:  cache.NewLRUCache[report.Summary](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Timer
	mux.HandleFunc("POST /api/timer/start", s.withSecurityHeaders(s.handleStartTimer))
	mux.HandleFunc("POST /api/timer/stop", s.withSecurityHeaders(s.handleStopTimer))
	mux.HandleFunc("GET /api/timer", s.withSecurityHeaders(s.handleCurrentTimer))

	// Time entries
	mux.HandleFunc("GET /api/entries", s.withSecurityHeaders(s.handleListEntries))
	mux.HandleFunc("POST /api/entries", s.withSecurityHeaders(s.handleCreateEntry))
	mux.HandleFunc("GET /api/entries/{id}", s.withSecurityHeaders(s.handleGetEntry))
	mux.HandleFunc("PUT /api/entries/{id}", s.withSecurityHeaders(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.withSecurityHeaders(s.handleDeleteEntry))

	// Clients and projects
	mux.HandleFunc("GET /api/clients", s.withSecurityHeaders(s.handleListClients))
	mux.HandleFunc("POST /api/clients", s.withSecurityHeaders(s.handleCreateClient))
	mux.HandleFunc("GET /api/clients/{id}", s.withSecurityHeaders(s.handleGetClient))
	mux.HandleFunc("PUT /api/clients/{id}", s.withSecurityHeaders(s.handleUpdateClient))
	mux.HandleFunc("DELETE /api/clients/{id}", s.withSecurityHeaders(s.handleDeleteClient))
	mux.HandleFunc("GET /api/projects", s.withSecurityHeaders(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.withSecurityHeaders(s.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{id}", s.withSecurityHeaders(s.handleGetProject))
	mux.HandleFunc("PUT /api/projects/{id}", s.withSecurityHeaders(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.withSecurityHeaders(s.handleDeleteProject))

	// Goals and settings
	mux.HandleFunc("GET /api/goals", s.withSecurityHeaders(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withSecurityHeaders(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withSecurityHeaders(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withSecurityHeaders(s.handleDeleteGoal))
	mux.HandleFunc("GET /api/goals/{id}/progress", s.withSecurityHeaders(s.handleGoalProgress))
	mux.HandleFunc("GET /api/settings", s.withSecurityHeaders(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withSecurityHeaders(s.handleUpdateSettings))

	// Reports
	mux.HandleFunc("GET /api/report", s.withSecurityHeaders(s.handleReport))

	// Invoices
	mux.HandleFunc("GET /api/invoices", s.withSecurityHeaders(s.handleListInvoices))
	mux.HandleFunc("POST /api/invoices", s.withSecurityHeaders(s.handleCreateInvoice))
	mux.HandleFunc("GET /api/invoices/{id}", s.withSecurityHeaders(s.handleGetInvoice))
	mux.HandleFunc("GET /api/invoices/{id}/document", s.withSecurityHeaders(s.handleInvoiceDocument))
	mux.HandleFunc("PUT /api/invoices/{id}/status", s.withSecurityHeaders(s.handleInvoiceStatus))

	// CSV import and export
	mux.HandleFunc("POST /api/import", s.withSecurityHeaders(s.handleImport))
	mux.HandleFunc("GET /api/export", s.withSecurityHeaders(s.handleExport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		logger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, clientIP)
		}

		// Rate limit mutating requests
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateReports drops every cached report summary after a write.
func (s *Server) invalidateReports() {
	s.reportCache.DeletePrefix("report:")
}
