package core

import (
	"errors"
	"testing"
	"time"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func mustSeries(t *testing.T, obs ...Observation) *TimeSeries {
	t.Helper()
	s, err := NewTimeSeries(obs)
	if err != nil {
		t.Fatalf("NewTimeSeries: %v", err)
	}
	return s
}

func TestNewTimeSeriesSortsAndValidates(t *testing.T) {
	s := mustSeries(t,
		Observation{Date: day(2024, 1, 1), CPI: 400},
		Observation{Date: day(2015, 1, 1), CPI: 100},
		Observation{Date: day(2020, 6, 1), CPI: 250},
	)
	obs := s.Observations()
	for i := 1; i < len(obs); i++ {
		if !obs[i].Date.After(obs[i-1].Date) {
			t.Fatalf("observations not strictly increasing: %v", obs)
		}
	}

	if _, err := NewTimeSeries(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
	_, err := NewTimeSeries([]Observation{
		{Date: day(2015, 1, 1), CPI: 100},
		{Date: day(2015, 1, 1), CPI: 101},
	})
	if !errors.Is(err, ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
	if _, err := NewTimeSeries([]Observation{{Date: day(2015, 1, 1), CPI: 0}}); !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("expected ErrInvalidObservation, got %v", err)
	}
}

func TestObservationsIsACopy(t *testing.T) {
	s := mustSeries(t, Observation{Date: day(2015, 1, 1), CPI: 100})
	obs := s.Observations()
	obs[0].CPI = 1
	if latest, _ := s.Latest(); latest.CPI != 100 {
		t.Fatalf("series mutated through Observations copy: %v", latest.CPI)
	}
}

func TestLatest(t *testing.T) {
	s := mustSeries(t,
		Observation{Date: day(2019, 1, 1), CPI: 150},
		Observation{Date: day(2024, 1, 1), CPI: 400},
		Observation{Date: day(2015, 1, 1), CPI: 100},
	)
	latest, err := s.Latest()
	if err != nil || !latest.Date.Equal(day(2024, 1, 1)) || latest.CPI != 400 {
		t.Fatalf("unexpected latest %+v (err=%v)", latest, err)
	}

	var empty TimeSeries
	if _, err := empty.Latest(); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestNearestOnOrBefore(t *testing.T) {
	s := mustSeries(t,
		Observation{Date: day(2015, 1, 1), CPI: 100},
		Observation{Date: day(2015, 2, 1), CPI: 110},
		Observation{Date: day(2024, 1, 1), CPI: 400},
	)
	tests := []struct {
		name         string
		target       time.Time
		wantCPI      float64
		wantFallback bool
	}{
		{"exact match", day(2015, 2, 1), 110, false},
		{"between observations", day(2020, 1, 1), 110, false},
		{"after last", day(2030, 1, 1), 400, false},
		{"before first falls back to earliest", day(2014, 1, 1), 100, true},
		{"long before first", day(1900, 1, 1), 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, fallback, err := s.NearestOnOrBefore(tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if obs.CPI != tt.wantCPI || fallback != tt.wantFallback {
				t.Errorf("got cpi=%v fallback=%v, want cpi=%v fallback=%v", obs.CPI, fallback, tt.wantCPI, tt.wantFallback)
			}
		})
	}
}

func TestYearsForSelection(t *testing.T) {
	s := mustSeries(t,
		Observation{Date: day(2015, 3, 1), CPI: 90},
		Observation{Date: day(2015, 9, 1), CPI: 110},
		Observation{Date: day(2018, 1, 1), CPI: 200},
		Observation{Date: day(2024, 1, 1), CPI: 400},
		Observation{Date: day(2024, 2, 1), CPI: 410},
	)
	got := s.YearsForSelection()
	want := []int{2018, 2015}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	single := mustSeries(t, Observation{Date: day(2024, 1, 1), CPI: 1})
	if years := single.YearsForSelection(); len(years) != 0 {
		t.Fatalf("expected no selectable years, got %v", years)
	}
}

func TestAverageForYear(t *testing.T) {
	s := mustSeries(t,
		Observation{Date: day(2014, 12, 1), CPI: 1000},
		Observation{Date: day(2015, 3, 1), CPI: 90},
		Observation{Date: day(2015, 9, 1), CPI: 110},
		Observation{Date: day(2016, 1, 1), CPI: 1000},
	)
	avg, err := s.AverageForYear(2015)
	if err != nil || avg != 100 {
		t.Fatalf("expected 100, got %v (err=%v)", avg, err)
	}
	if _, err := s.AverageForYear(1999); !errors.Is(err, ErrYearNotFound) {
		t.Fatalf("expected ErrYearNotFound, got %v", err)
	}
}

func TestParseObservations(t *testing.T) {
	obs, skipped := ParseObservations([]RawObservation{
		{Date: "2015-01-01", Value: "100"},
		{Date: "2016-01-01", Value: "."},
		{Date: "garbage", Value: "1"},
		{Date: "2017-01-01", Value: "120"},
	})
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	if len(skipped) != 1 || skipped[0].Row != 3 || !errors.Is(skipped[0], ErrInvalidObservation) {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}

	obs, skipped = ParseObservations([]RawObservation{{Date: "2015-01-01", Value: ""}})
	if len(obs) != 0 || len(skipped) != 0 {
		t.Fatalf("missing values should be dropped silently: %v %v", obs, skipped)
	}
	if _, err := NewTimeSeries(obs); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}
