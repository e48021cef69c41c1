package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"inflation/internal/cache"
	"inflation/internal/core"
	"inflation/internal/dataset"
	applog "inflation/internal/log"
	appweb "inflation/web"
)

// SnapshotProvider returns the active dataset snapshot.
type SnapshotProvider interface {
	Current() *dataset.Snapshot
}

// Options configures the server. Zero values fall back to defaults.
type Options struct {
	Categories        []core.Category
	CurrencySymbol    string
	HeadlineYears     int
	DefaultYearOffset int
	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerMinute int
	Logger            *applog.Logger
	Now               func() time.Time
}

func (o *Options) setDefaults() {
	if len(o.Categories) == 0 {
		o.Categories = core.DefaultCategories()
	}
	if o.HeadlineYears <= 0 {
		o.HeadlineYears = 10
	}
	if o.DefaultYearOffset <= 0 {
		o.DefaultYearOffset = 10
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 10 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = applog.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type appMetrics struct {
	startedAt          time.Time
	comparisons        int64
	comparisonErrors   int64
	suspiciousRequests int64
}

type Server struct {
	http.Server
	templates   *template.Template
	data        SnapshotProvider
	opts        Options
	logger      *applog.Logger
	sl          *applog.StructuredLogger
	rateLimiter *rateLimiter
	results     *cache.LRUCache[core.ComparisonResult]
	metrics     appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, data SnapshotProvider, opts Options) *Server {
	opts.setDefaults()
	mux := http.NewServeMux()
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		data:        data,
		opts:        opts,
		logger:      logger,
		sl:          applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.RequestsPerMinute),
		results:     cache.NewLRUCache[core.ComparisonResult](opts.CacheSize, opts.CacheTTL),
		metrics:     appMetrics{startedAt: opts.Now()},
	}

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.wrap(s.handleIndex))
	mux.HandleFunc("POST /compare", s.wrap(s.handleCompare))
	mux.HandleFunc("GET /api/headline", s.wrap(s.handleAPIHeadline))
	mux.HandleFunc("GET /api/years", s.wrap(s.handleAPIYears))
	mux.HandleFunc("GET /api/series", s.wrap(s.handleAPISeries))
	mux.HandleFunc("POST /api/compare", s.wrap(s.handleAPICompare))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	return s
}

// ResultsCache exposes the comparison cache so it can be registered for
// periodic expiry.
func (s *Server) ResultsCache() cache.Cleaner {
	return s.results
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return core.FormatAmount(s.opts.CurrencySymbol, v) },
		"whole": core.FormatWhole,
		"pct":   formatPercent,
		"cpi":   func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
		"date":  func(t time.Time) string { return t.Format("Jan 2006") },
	}
}

// render executes a template into a buffer so a failure never leaves a
// half-written response.
func (s *Server) render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrap adds request IDs, structured request logging, security headers,
// probe detection and POST rate limiting.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = applog.NewContext(ctx, s.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.sl.LogHTTPStart(ctx, r, requestID, clientIP)

		if detectSuspiciousRequest(r, &s.metrics.suspiciousRequests) {
			s.logger.WarnContext(ctx, "Suspicious request",
				applog.FieldRequestID, requestID,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		applySecurityHeaders(w, r)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			http.Error(rw, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		} else {
			next(rw, r)
		}

		s.sl.LogHTTPEnd(ctx, r, requestID, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
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

func (s *Server) snapshot() *dataset.Snapshot {
	if s.data == nil {
		return nil
	}
	return s.data.Current()
}

func (s *Server) countComparison(err error) {
	if err != nil {
		atomic.AddInt64(&s.metrics.comparisonErrors, 1)
		return
	}
	atomic.AddInt64(&s.metrics.comparisons, 1)
}
