package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"inflation/internal/core"
	applog "inflation/internal/log"
)

type breakdownRow struct {
	Label       string
	Today, Past float64
	TodayWidth  int
	PastWidth   int
}

type comparisonView struct {
	core.ComparisonResult
	Change string
	Rows   []breakdownRow
}

func newComparisonView(res core.ComparisonResult) comparisonView {
	var max float64
	for _, l := range res.Breakdown {
		if l.Today > max {
			max = l.Today
		}
		if l.Past > max {
			max = l.Past
		}
	}
	v := comparisonView{ComparisonResult: res, Change: formatPercent(res.CPIChangePercent)}
	for _, l := range res.Breakdown {
		v.Rows = append(v.Rows, breakdownRow{
			Label:      l.Label,
			Today:      l.Today,
			Past:       l.Past,
			TodayWidth: barWidth(l.Today, max),
			PastWidth:  barWidth(l.Past, max),
		})
	}
	return v
}

// statusFor maps request and computation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedForm):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrYearNotFound),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, errUnknownCategory),
		errors.Is(err, errNoAmounts),
		errors.Is(err, errInvalidYear):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptySeries):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleCompare renders the comparison partial for the HTMX form.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := s.snapshot()
	if snap == nil {
		ServiceUnavailableError("No CPI data is loaded.").Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("Templates not loaded.").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format.").Write(w)
		return
	}

	defaultYear, _ := snap.Calculator.DefaultComparisonYear(s.opts.Now(), s.opts.DefaultYearOffset)
	req, err := ParseComparisonForm(r.PostForm, s.opts.Categories, defaultYear)
	if err != nil {
		s.countComparison(err)
	} else {
		var res core.ComparisonResult
		res, err = s.compute(ctx, snap.Calculator, snap.Version, req)
		if err == nil {
			body, rerr := s.render("comparison.html", newComparisonView(res))
			if rerr != nil {
				s.sl.LogError(ctx, "Comparison template execution failed", rerr, applog.ComponentHTTP, applog.OpRender, nil)
				InternalServerError("Could not render the comparison.").Write(w)
				return
			}
			NewHTMXResponse().
				TriggerComparisonComputed(res.Year, res.LatestYear).
				BodyRendered(body).
				Write(w)
			return
		}
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.sl.LogError(ctx, "Comparison failed", err, applog.ComponentCalculator, applog.OpCompare, nil)
	} else {
		applog.FromContext(ctx).WarnContext(ctx, "Comparison rejected", applog.FieldError, err)
	}
	msg := userMessage(err)
	var resp *HTMXResponseBuilder
	switch status {
	case http.StatusBadRequest:
		resp = BadRequestError(msg)
	case http.StatusUnprocessableEntity:
		resp = UnprocessableEntityError(msg)
	case http.StatusServiceUnavailable:
		resp = ServiceUnavailableError(msg)
	default:
		resp = InternalServerError(msg)
	}
	if status < http.StatusInternalServerError {
		resp.TriggerWarningNotification(msg)
	}
	resp.Write(w)
}

type observationJSON struct {
	Date string  `json:"date"`
	CPI  float64 `json:"cpi"`
}

func toObservationJSON(o core.Observation) observationJSON {
	return observationJSON{Date: o.Date.Format("2006-01-02"), CPI: o.CPI}
}

type lineValueJSON struct {
	Label string  `json:"label"`
	Today float64 `json:"today"`
	Past  float64 `json:"past"`
}

type comparisonJSON struct {
	Year             int                `json:"year"`
	LatestYear       int                `json:"latest_year"`
	TotalToday       float64            `json:"total_today"`
	TotalPast        float64            `json:"total_past"`
	CPILatest        float64            `json:"cpi_latest"`
	CPIPast          float64            `json:"cpi_past"`
	CPIChangePercent float64            `json:"cpi_change_percent"`
	PerCategoryPast  map[string]float64 `json:"per_category_past"`
	Breakdown        []lineValueJSON    `json:"breakdown"`
	SnapshotVersion  uint64             `json:"snapshot_version"`
}

// handleAPICompare is the JSON form of the comparison.
func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := s.snapshot()
	if snap == nil {
		writeJSONError(w, r, http.StatusServiceUnavailable, "no CPI data is loaded")
		return
	}

	defaultYear, _ := snap.Calculator.DefaultComparisonYear(s.opts.Now(), s.opts.DefaultYearOffset)
	req, err := DecodeComparisonJSON(r.Body, defaultYear)
	if err != nil {
		s.countComparison(err)
		writeJSONError(w, r, statusFor(err), err.Error())
		return
	}
	res, err := s.compute(ctx, snap.Calculator, snap.Version, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.sl.LogError(ctx, "Comparison failed", err, applog.ComponentCalculator, applog.OpCompare, nil)
		}
		writeJSONError(w, r, status, err.Error())
		return
	}

	out := comparisonJSON{
		Year:             res.Year,
		LatestYear:       res.LatestYear,
		TotalToday:       res.TotalToday,
		TotalPast:        res.TotalPast,
		CPILatest:        res.CPILatest,
		CPIPast:          res.CPIPast,
		CPIChangePercent: res.CPIChangePercent,
		PerCategoryPast:  res.PerCategoryPast,
		Breakdown:        make([]lineValueJSON, 0, len(res.Breakdown)),
		SnapshotVersion:  snap.Version,
	}
	for _, l := range res.Breakdown {
		out.Breakdown = append(out.Breakdown, lineValueJSON{Label: l.Label, Today: l.Today, Past: l.Past})
	}
	writeJSON(w, http.StatusOK, out)
}

type headlineJSON struct {
	Years           int             `json:"years"`
	RatePercent     float64         `json:"rate_percent"`
	Latest          observationJSON `json:"latest"`
	Past            observationJSON `json:"past"`
	Fallback        bool            `json:"fallback"`
	SnapshotVersion uint64          `json:"snapshot_version"`
}

// handleAPIHeadline returns the headline rate; ?years=N overrides the span.
func (s *Server) handleAPIHeadline(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeJSONError(w, r, http.StatusServiceUnavailable, "no CPI data is loaded")
		return
	}
	years, err := parseOptionalInt(r.URL.Query().Get("years"), s.opts.HeadlineYears)
	if err != nil || years < 1 || years > 100 {
		writeJSONError(w, r, http.StatusBadRequest, "years must be an integer between 1 and 100")
		return
	}

	h, err := snap.Calculator.HeadlineRate(years)
	if err != nil {
		s.sl.LogError(r.Context(), "Headline rate failed", err, applog.ComponentCalculator, applog.OpHeadline, nil)
		writeJSONError(w, r, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, headlineJSON{
		Years:           h.Years,
		RatePercent:     h.RatePercent,
		Latest:          toObservationJSON(h.Latest),
		Past:            toObservationJSON(h.Past),
		Fallback:        h.Fallback,
		SnapshotVersion: snap.Version,
	})
}

type yearsJSON struct {
	Years       []int `json:"years"`
	DefaultYear int   `json:"default_year,omitempty"`
	LatestYear  int   `json:"latest_year"`
}

func (s *Server) handleAPIYears(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeJSONError(w, r, http.StatusServiceUnavailable, "no CPI data is loaded")
		return
	}
	out := yearsJSON{Years: snap.Calculator.ComparisonYears()}
	out.DefaultYear, _ = snap.Calculator.DefaultComparisonYear(s.opts.Now(), s.opts.DefaultYearOffset)
	if latest, err := snap.Series.Latest(); err == nil {
		out.LatestYear = latest.Year()
	}
	writeJSON(w, http.StatusOK, out)
}

type seriesJSON struct {
	Source          string            `json:"source"`
	SnapshotVersion uint64            `json:"snapshot_version"`
	Observations    []observationJSON `json:"observations"`
}

// handleAPISeries lists observations, optionally bounded by ?from= and ?to=
// years (inclusive).
func (s *Server) handleAPISeries(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		writeJSONError(w, r, http.StatusServiceUnavailable, "no CPI data is loaded")
		return
	}
	q := r.URL.Query()
	from, err := parseOptionalInt(q.Get("from"), 0)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid from year %q", q.Get("from")))
		return
	}
	to, err := parseOptionalInt(q.Get("to"), 0)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid to year "+strconv.Quote(q.Get("to")))
		return
	}

	out := seriesJSON{Source: snap.Source, SnapshotVersion: snap.Version, Observations: []observationJSON{}}
	for _, o := range snap.Series.Observations() {
		if (from != 0 && o.Year() < from) || (to != 0 && o.Year() > to) {
			continue
		}
		out.Observations = append(out.Observations, toObservationJSON(o))
	}
	writeJSON(w, http.StatusOK, out)
}
