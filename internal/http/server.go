package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"billsplit/internal/backend"
	"billsplit/internal/log"
	appweb "billsplit/web"
)

// Server wraps http.Server with the bill store and the request-level
// protections (rate limiting, security headers, request tracing).
type Server struct {
	http.Server

	store        backend.Backend
	rateLimiter  *rateLimiter
	security     *securityMetrics
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store backend.Backend) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:       store,
		rateLimiter: newRateLimiter(),
		security:    &securityMetrics{},
		started:     time.Now(),
	}

	// Every request runs under a context logger carrying the component and
	// a fresh request id; handlers pick it up with log.FromContext.
	base := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.Default().Handler(),
	})
	s.Server.Handler = log.Middleware(base)(
		log.ComponentMiddleware(log.ComponentHTTP)(
			log.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(mux)))

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tiny cache for static assets
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("GET /bills", s.withSecurityHeaders(s.handleListBills))
	mux.HandleFunc("POST /bill/save", s.withSecurityHeaders(s.handleSaveBill))
	mux.HandleFunc("GET /bill/{billId}", s.withSecurityHeaders(s.handleGetBill))
	mux.HandleFunc("GET /bill/{billId}/items", s.withSecurityHeaders(s.handleBillItems))
	mux.HandleFunc("GET /bill/{billId}/person/{person}/items", s.withSecurityHeaders(s.handlePersonItems))
	mux.HandleFunc("GET /bill/{billId}/item/{itemId}", s.withSecurityHeaders(s.handleBillItem))
	mux.HandleFunc("GET /bill/{billId}/split", s.withSecurityHeaders(s.handleSplit))
	mux.HandleFunc("GET /bill/{billId}/download", s.withSecurityHeaders(s.handleDownloadBill))
	mux.HandleFunc("POST /items/download", s.withSecurityHeaders(s.handleDownloadItems))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
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

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		clientIP := extractClientIP(r)
		logger := log.FromContext(ctx)
		requestLog := log.NewStructuredLogger(logger)

		requestLog.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.security) {
			logger.WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		// Rate limiting applies to the mutating routes only
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.security) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		requestLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
