package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type (
	// CategoryLine is one user-entered amount for a category and subcategory.
	CategoryLine struct {
		Category    string
		Subcategory string
		Amount      float64
	}

	// ComparisonRequest asks what the given present-day amounts were worth in Year.
	ComparisonRequest struct {
		Lines []CategoryLine
		Year  int
	}

	// LineValue is one row of the per-category breakdown.
	LineValue struct {
		Label string
		Today float64
		Past  float64
	}

	ComparisonResult struct {
		Year       int
		LatestYear int
		TotalToday float64
		TotalPast  float64
		CPILatest  float64
		CPIPast    float64
		// CPIChangePercent is the CPI change from Year to the latest observation.
		CPIChangePercent float64
		PerCategoryPast  map[string]float64
		Breakdown        []LineValue // request order, one entry per label
	}

	// Headline is the rate of change of CPI over a span of years.
	Headline struct {
		Years       int
		RatePercent float64
		Latest      Observation
		Past        Observation
		Fallback    bool // series shorter than Years; Past is the earliest observation
	}
)

// Label renders the line as "Category (Subcategory)".
func (l CategoryLine) Label() string {
	cat := strings.TrimSpace(l.Category)
	sub := strings.TrimSpace(l.Subcategory)
	if sub == "" {
		return cat
	}
	return cat + " (" + sub + ")"
}

func (l CategoryLine) Validate() error {
	if strings.TrimSpace(l.Category) == "" {
		return fmt.Errorf("%w: empty category", ErrInvalidAmount)
	}
	if l.Amount < 0 || math.IsNaN(l.Amount) || math.IsInf(l.Amount, 0) {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidAmount, l.Label())
	}
	return nil
}

// Amounts returns the label → amount mapping. Lines sharing a label are summed.
func (r ComparisonRequest) Amounts() map[string]float64 {
	out := make(map[string]float64, len(r.Lines))
	for _, l := range r.Lines {
		out[l.Label()] += l.Amount
	}
	return out
}

// Calculator answers the user-facing questions over one immutable series.
type Calculator struct {
	series *TimeSeries
	lookup Lookup
}

func NewCalculator(series *TimeSeries) *Calculator {
	return &Calculator{series: series, lookup: NewLookup(series)}
}

// Series returns the series the calculator reads.
func (c *Calculator) Series() *TimeSeries {
	return c.series
}

// HeadlineRate returns the CPI change between the latest observation and the
// observation the given number of years earlier.
func (c *Calculator) HeadlineRate(years int) (Headline, error) {
	latest, err := c.lookup.Latest()
	if err != nil {
		return Headline{}, err
	}
	past, err := c.lookup.CPINYearsAgo(years)
	if err != nil {
		return Headline{}, err
	}
	rate, err := PercentChange(latest.CPI, past.CPI)
	if err != nil {
		return Headline{}, err
	}
	return Headline{
		Years:       years,
		RatePercent: rate,
		Latest:      latest,
		Past:        past.Observation,
		Fallback:    past.Fallback,
	}, nil
}

// ComparisonYears lists the selectable comparison years, most recent first.
func (c *Calculator) ComparisonYears() []int {
	return c.series.YearsForSelection()
}

// DefaultComparisonYear picks now.Year()-offset when it is selectable and the
// most recent selectable year otherwise. ok is false when nothing is selectable.
func (c *Calculator) DefaultComparisonYear(now time.Time, offset int) (year int, ok bool) {
	years := c.ComparisonYears()
	if len(years) == 0 {
		return 0, false
	}
	want := now.Year() - offset
	for _, y := range years {
		if y == want {
			return y, true
		}
	}
	return years[0], true
}

// Compute converts the request's present-day amounts into Year's prices.
func (c *Calculator) Compute(req ComparisonRequest) (ComparisonResult, error) {
	for _, l := range req.Lines {
		if err := l.Validate(); err != nil {
			return ComparisonResult{}, err
		}
	}
	latest, err := c.lookup.Latest()
	if err != nil {
		return ComparisonResult{}, err
	}
	cpiPast, err := c.lookup.CPIForYear(req.Year)
	if err != nil {
		return ComparisonResult{}, err
	}

	amounts := req.Amounts()
	totalToday := Total(amounts)
	totalPast, err := Convert(totalToday, latest.CPI, cpiPast)
	if err != nil {
		return ComparisonResult{}, err
	}
	change, err := PercentChange(latest.CPI, cpiPast)
	if err != nil {
		return ComparisonResult{}, err
	}

	res := ComparisonResult{
		Year:             req.Year,
		LatestYear:       latest.Year(),
		TotalToday:       totalToday,
		TotalPast:        totalPast,
		CPILatest:        latest.CPI,
		CPIPast:          cpiPast,
		CPIChangePercent: change,
		PerCategoryPast:  make(map[string]float64, len(amounts)),
		Breakdown:        make([]LineValue, 0, len(amounts)),
	}
	for _, l := range req.Lines {
		label := l.Label()
		if _, done := res.PerCategoryPast[label]; done {
			continue
		}
		past, err := Convert(amounts[label], latest.CPI, cpiPast)
		if err != nil {
			return ComparisonResult{}, err
		}
		res.PerCategoryPast[label] = past
		res.Breakdown = append(res.Breakdown, LineValue{Label: label, Today: amounts[label], Past: past})
	}
	return res, nil
}
