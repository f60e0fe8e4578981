// Package http serves the invoice views as server-rendered HTML.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"gstinvoicer/internal/cache"
	"gstinvoicer/internal/controller"
	"gstinvoicer/internal/core"
	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/notify"
	appweb "gstinvoicer/web"
)

type Options struct {
	Session *controller.Session
	// Ready reports store readiness for /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger

	NotifyDelay  time.Duration
	PDFCacheSize int
	PDFCacheTTL  time.Duration
	// PostLimit is the per-client POST budget per minute.
	PostLimit int
}

type Server struct {
	http.Server
	templates *template.Template
	session   *controller.Session
	ready     func(ctx context.Context) error

	logger *applog.Logger
	reqLog *applog.StructuredLogger

	rateLimiter *rateLimiter
	metrics     *securityMetrics
	pdfCache    *cache.LRUCache[[]byte]
	caches      *cache.Manager

	notifyDelay  time.Duration
	started      time.Time
	shutdownOnce sync.Once
}

var templateFuncs = template.FuncMap{
	"rupees": core.FormatRupees,
	"qty":    core.FormatQuantity,
	"rate":   core.FormatRate,
	"plain":  func(d decimal.Decimal) string { return d.String() },
	"states": core.States,
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	if opts.NotifyDelay <= 0 {
		opts.NotifyDelay = notify.DefaultDelay
	}
	if opts.PDFCacheSize <= 0 {
		opts.PDFCacheSize = 64
	}
	if opts.PDFCacheTTL <= 0 {
		opts.PDFCacheTTL = 10 * time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.Middleware(logger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		session:     opts.Session,
		ready:       opts.Ready,
		logger:      logger,
		reqLog:      applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.PostLimit),
		metrics:     &securityMetrics{},
		pdfCache:    cache.NewLRUCache[[]byte](opts.PDFCacheSize, opts.PDFCacheTTL),
		caches:      cache.NewManager(),
		notifyDelay: opts.NotifyDelay,
		started:     time.Now(),
	}
	s.caches.Register(s.pdfCache)
	s.caches.StartCleanup(time.Minute)

	t, err := parseTemplates()
	if err != nil {
		logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.handleIndex))

	// view transitions
	mux.HandleFunc("POST /actions/create", s.withSecurityHeaders(s.handleCreate))
	mux.HandleFunc("POST /actions/select", s.withSecurityHeaders(s.handleSelect))
	mux.HandleFunc("POST /actions/back", s.withSecurityHeaders(s.handleBack))
	mux.HandleFunc("POST /actions/save", s.withSecurityHeaders(s.handleSave))
	mux.HandleFunc("POST /actions/open-pdf", s.withSecurityHeaders(s.handleOpenDirectView))
	mux.HandleFunc("POST /actions/settings", s.withSecurityHeaders(s.handleOpenSettings))
	mux.HandleFunc("POST /actions/settings/save", s.withSecurityHeaders(s.handleSaveSettings))

	// editor and settings fields
	mux.HandleFunc("POST /editor/customer", s.withSecurityHeaders(s.handleCustomerFields))
	mux.HandleFunc("POST /editor/items", s.withSecurityHeaders(s.handleAddItem))
	mux.HandleFunc("POST /editor/items/{itemID}", s.withSecurityHeaders(s.handleUpdateItem))
	mux.HandleFunc("POST /editor/items/{itemID}/delete", s.withSecurityHeaders(s.handleRemoveItem))
	mux.HandleFunc("POST /settings/profile", s.withSecurityHeaders(s.handleProfileFields))

	// documents
	mux.HandleFunc("GET /editor/preview", s.withSecurityHeaders(s.handlePreview))
	mux.HandleFunc("GET /invoices/{id}/pdf", s.withSecurityHeaders(s.handlePDF))
	mux.HandleFunc("GET /invoices/{id}/receipt.txt", s.withSecurityHeaders(s.handleText))
	mux.HandleFunc("GET /invoices/{id}/share", s.withSecurityHeaders(s.handleShare))

	return s
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.metrics.requests, 1)

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		logger := applog.FromContext(r.Context()).With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.reqLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
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
