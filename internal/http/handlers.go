package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"inflation/internal/core"
	applog "inflation/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": s.opts.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports whether a dataset snapshot is loaded and templates parsed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if snap := s.snapshot(); snap == nil {
		checks["dataset"] = "failed: no snapshot loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		latest, _ := snap.Series.Latest()
		checks["dataset"] = map[string]interface{}{
			"status":       "ok",
			"source":       snap.Source,
			"version":      snap.Version,
			"observations": snap.Series.Len(),
			"latest_date":  latest.Date.Format("2006-01-02"),
			"loaded_at":    snap.LoadedAt.Format(time.RFC3339),
		}
	}

	stats := s.results.Stats()
	checks["cache"] = map[string]interface{}{
		"entries": stats.Size,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.activeClients(),
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": s.opts.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application metrics in a Prometheus-like text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	stats := s.results.Stats()
	var version uint64
	var observations int
	if snap := s.snapshot(); snap != nil {
		version, observations = snap.Version, snap.Series.Len()
	}

	metric := func(name, kind, help string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("comparisons_total", "counter", "Comparisons computed", atomic.LoadInt64(&s.metrics.comparisons))
	metric("comparison_errors_total", "counter", "Comparisons rejected or failed", atomic.LoadInt64(&s.metrics.comparisonErrors))
	metric("cache_hits_total", "counter", "Comparison cache hits", stats.Hits)
	metric("cache_misses_total", "counter", "Comparison cache misses", stats.Misses)
	metric("cache_entries", "gauge", "Comparison cache entries", stats.Size)
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", s.rateLimiter.totalHits())
	metric("suspicious_requests_total", "counter", "Requests flagged as probes", atomic.LoadInt64(&s.metrics.suspiciousRequests))
	metric("dataset_snapshot_version", "gauge", "Version of the active dataset snapshot", version)
	metric("dataset_observations", "gauge", "Observations in the active dataset snapshot", observations)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.metrics.startedAt).Seconds()))
}

type headlineView struct {
	core.Headline
	Rate string
}

type indexView struct {
	Headline      *headlineView
	HeadlineError string
	Categories    []core.Category
	Years         []int
	DefaultYear   int
	CanCompare    bool
	Chart         seriesChart
	Source        string
	LoadedAt      time.Time
	LatestDate    time.Time
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	snap := s.snapshot()
	if snap == nil {
		http.Error(w, "dataset not loaded", http.StatusServiceUnavailable)
		return
	}

	calc := snap.Calculator
	view := indexView{
		Categories: s.opts.Categories,
		Years:      calc.ComparisonYears(),
		Chart:      buildSeriesChart(snap.Series.Observations()),
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
	}
	if latest, err := snap.Series.Latest(); err == nil {
		view.LatestDate = latest.Date
	}
	view.DefaultYear, view.CanCompare = calc.DefaultComparisonYear(s.opts.Now(), s.opts.DefaultYearOffset)

	if h, err := calc.HeadlineRate(s.opts.HeadlineYears); err != nil {
		s.sl.LogError(r.Context(), "Headline rate failed", err, applog.ComponentCalculator, applog.OpHeadline, nil)
		view.HeadlineError = "Inflation rate unavailable."
	} else {
		view.Headline = &headlineView{Headline: h, Rate: formatPercent(h.RatePercent)}
	}

	body, err := s.render("index.html", view)
	if err != nil {
		s.sl.LogError(r.Context(), "Index template execution failed", err, applog.ComponentHTTP, applog.OpRender, nil)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// compute runs a comparison through the results cache.
func (s *Server) compute(ctx context.Context, calc *core.Calculator, version uint64, req core.ComparisonRequest) (core.ComparisonResult, error) {
	res, hit, err := s.results.GetOrCompute(comparisonKey(version, req), func() (core.ComparisonResult, error) {
		return calc.Compute(req)
	})
	s.countComparison(err)
	if err != nil {
		return core.ComparisonResult{}, err
	}
	if hit {
		applog.FromContext(ctx).DebugContext(ctx, "Comparison cache hit", applog.FieldYear, req.Year)
	} else {
		s.sl.LogComparison(ctx, len(req.Lines), res)
	}
	return res, nil
}

// comparisonKey identifies a request against one snapshot version. Line order
// is part of the key because it orders the breakdown.
func comparisonKey(version uint64, req core.ComparisonRequest) string {
	key := fmt.Sprintf("v%d|%d", version, req.Year)
	for _, l := range req.Lines {
		key += fmt.Sprintf("|%s\x1f%s\x1f%g", l.Category, l.Subcategory, l.Amount)
	}
	return key
}
