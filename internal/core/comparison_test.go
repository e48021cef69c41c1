package core

import (
	"errors"
	"math"
	"testing"
)

func scenarioSeries(t *testing.T) *TimeSeries {
	return mustSeries(t,
		Observation{Date: day(2015, 1, 1), CPI: 100},
		Observation{Date: day(2024, 1, 1), CPI: 400},
	)
}

func TestLookup(t *testing.T) {
	l := NewLookup(scenarioSeries(t))

	latest, err := l.LatestCPI()
	if err != nil || latest != 400 {
		t.Fatalf("expected latest 400, got %v (err=%v)", latest, err)
	}

	past, err := l.CPINYearsAgo(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if past.CPI != 100 || !past.Fallback || !past.Target.Equal(day(2014, 1, 1)) {
		t.Fatalf("unexpected past cpi: %+v", past)
	}

	past, _ = l.CPINYearsAgo(5)
	if past.CPI != 100 || past.Fallback {
		t.Fatalf("expected 2019 to resolve to 2015 without fallback: %+v", past)
	}

	if _, err := l.CPIForYear(1999); !errors.Is(err, ErrYearNotFound) {
		t.Fatalf("expected ErrYearNotFound, got %v", err)
	}
}

func TestCPINYearsAgoLeapDay(t *testing.T) {
	l := NewLookup(mustSeries(t,
		Observation{Date: day(2014, 2, 28), CPI: 50},
		Observation{Date: day(2014, 3, 1), CPI: 60},
		Observation{Date: day(2024, 2, 29), CPI: 200},
	))
	past, err := l.CPINYearsAgo(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if past.CPI != 50 {
		t.Fatalf("29 Feb minus ten years should land on 28 Feb, got %+v", past)
	}
}

func TestHeadlineRate(t *testing.T) {
	c := NewCalculator(scenarioSeries(t))
	h, err := c.HeadlineRate(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.RatePercent != 300 || !h.Fallback || h.Past.CPI != 100 || h.Latest.CPI != 400 {
		t.Fatalf("unexpected headline: %+v", h)
	}
}

func TestCompute(t *testing.T) {
	c := NewCalculator(mustSeries(t,
		Observation{Date: day(2015, 3, 1), CPI: 90},
		Observation{Date: day(2015, 9, 1), CPI: 110},
		Observation{Date: day(2024, 1, 1), CPI: 400},
	))

	res, err := c.Compute(ComparisonRequest{
		Year: 2015,
		Lines: []CategoryLine{
			{Category: "Food", Subcategory: "Bag of Rice", Amount: 40000},
			{Category: "Transport", Subcategory: "Fuel", Amount: 20000},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalToday != 60000 || res.TotalPast != 15000 {
		t.Fatalf("unexpected totals: today=%v past=%v", res.TotalToday, res.TotalPast)
	}
	if res.CPIPast != 100 || res.CPILatest != 400 || res.LatestYear != 2024 || res.CPIChangePercent != 300 {
		t.Fatalf("unexpected cpi fields: %+v", res)
	}
	if got := res.PerCategoryPast["Food (Bag of Rice)"]; math.Abs(got-10000) > 1e-9 {
		t.Fatalf("unexpected food value %v", got)
	}
	if len(res.Breakdown) != 2 || res.Breakdown[0].Label != "Food (Bag of Rice)" || res.Breakdown[1].Past != 5000 {
		t.Fatalf("unexpected breakdown: %+v", res.Breakdown)
	}
}

func TestComputeMergesDuplicateLabels(t *testing.T) {
	c := NewCalculator(scenarioSeries(t))
	res, err := c.Compute(ComparisonRequest{
		Year: 2015,
		Lines: []CategoryLine{
			{Category: "Food", Subcategory: "Bread", Amount: 400},
			{Category: "Food", Subcategory: "Bread", Amount: 400},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Breakdown) != 1 || res.Breakdown[0].Today != 800 || res.Breakdown[0].Past != 200 {
		t.Fatalf("unexpected breakdown: %+v", res.Breakdown)
	}
}

func TestComputeErrors(t *testing.T) {
	c := NewCalculator(scenarioSeries(t))
	if _, err := c.Compute(ComparisonRequest{Year: 1999}); !errors.Is(err, ErrYearNotFound) {
		t.Fatalf("expected ErrYearNotFound, got %v", err)
	}
	_, err := c.Compute(ComparisonRequest{Year: 2015, Lines: []CategoryLine{{Category: "Food", Amount: -1}}})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	empty := NewCalculator(&TimeSeries{})
	if _, err := empty.Compute(ComparisonRequest{Year: 2015}); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
	if _, err := empty.HeadlineRate(10); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestComputeEmptyAmounts(t *testing.T) {
	c := NewCalculator(scenarioSeries(t))
	res, err := c.Compute(ComparisonRequest{Year: 2015})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalToday != 0 || res.TotalPast != 0 || len(res.Breakdown) != 0 {
		t.Fatalf("expected zero result, got %+v", res)
	}
}

func TestDefaultComparisonYear(t *testing.T) {
	c := NewCalculator(mustSeries(t,
		Observation{Date: day(2014, 1, 1), CPI: 90},
		Observation{Date: day(2016, 1, 1), CPI: 110},
		Observation{Date: day(2024, 1, 1), CPI: 400},
	))
	if y, ok := c.DefaultComparisonYear(day(2026, 5, 1), 10); !ok || y != 2016 {
		t.Fatalf("expected 2016, got %d ok=%v", y, ok)
	}
	if y, ok := c.DefaultComparisonYear(day(2025, 5, 1), 10); !ok || y != 2016 {
		t.Fatalf("expected most recent selectable year 2016, got %d ok=%v", y, ok)
	}

	single := NewCalculator(mustSeries(t, Observation{Date: day(2024, 1, 1), CPI: 1}))
	if _, ok := single.DefaultComparisonYear(day(2026, 1, 1), 10); ok {
		t.Fatalf("expected no default year")
	}
}

func TestCategoryLineLabel(t *testing.T) {
	if got := (CategoryLine{Category: "Food", Subcategory: "Yam"}).Label(); got != "Food (Yam)" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (CategoryLine{Category: " Rent "}).Label(); got != "Rent" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestCalculatorUsesLatestObservation(t *testing.T) {
	series := mustSeries(t,
		Observation{Date: day(2015, 1, 1), CPI: 100},
		Observation{Date: day(2024, 1, 1), CPI: 300},
		Observation{Date: day(2024, 6, 1), CPI: 500},
	)
	want, err := NewLookup(series).LatestCPI()
	if err != nil || want != 500 {
		t.Fatalf("expected latest cpi 500, got %v (err=%v)", want, err)
	}

	c := NewCalculator(series)
	h, err := c.HeadlineRate(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Latest.CPI != want || h.RatePercent != 400 {
		t.Fatalf("headline should use the latest observation, got %+v", h)
	}

	res, err := c.Compute(ComparisonRequest{
		Year:  2015,
		Lines: []CategoryLine{{Category: "Rent", Amount: 1000}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CPILatest != want || res.LatestYear != 2024 || res.TotalPast != 200 {
		t.Fatalf("compute should use the latest observation, got %+v", res)
	}
}
