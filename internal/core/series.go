package core

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// TimeSeries is an immutable, date-ordered sequence of observations.
// It is safe for concurrent readers once constructed.
type TimeSeries struct {
	obs []Observation
}

// NewTimeSeries validates and sorts the given observations. The input slice
// is copied; dates must be unique and CPI values positive.
func NewTimeSeries(observations []Observation) (*TimeSeries, error) {
	if len(observations) == 0 {
		return nil, ErrEmptySeries
	}
	obs := make([]Observation, len(observations))
	copy(obs, observations)
	for i := range obs {
		if err := obs[i].Validate(); err != nil {
			return nil, err
		}
		obs[i].Date = obs[i].Date.UTC()
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	for i := 1; i < len(obs); i++ {
		if obs[i].Date.Equal(obs[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, obs[i].Date.Format("2006-01-02"))
		}
	}
	return &TimeSeries{obs: obs}, nil
}

// RowError describes a raw row that could not be parsed.
type RowError struct {
	Row int // 1-based position in the input
	Raw RawObservation
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ParseObservations parses raw rows, dropping rows whose value is missing and
// reporting every other malformed row in skipped.
func ParseObservations(rows []RawObservation) (obs []Observation, skipped []RowError) {
	obs = make([]Observation, 0, len(rows))
	for i, r := range rows {
		o, err := r.Parse()
		if errors.Is(err, ErrMissingValue) {
			continue
		}
		if err != nil {
			skipped = append(skipped, RowError{Row: i + 1, Raw: r, Err: err})
			continue
		}
		obs = append(obs, o)
	}
	return obs, skipped
}

// Len returns the number of observations.
func (s *TimeSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.obs)
}

// Observations returns a copy of the ordered observations.
func (s *TimeSeries) Observations() []Observation {
	if s == nil {
		return nil
	}
	out := make([]Observation, len(s.obs))
	copy(out, s.obs)
	return out
}

// First returns the earliest observation.
func (s *TimeSeries) First() (Observation, error) {
	if s.Len() == 0 {
		return Observation{}, ErrEmptySeries
	}
	return s.obs[0], nil
}

// Latest returns the observation with the maximum date.
func (s *TimeSeries) Latest() (Observation, error) {
	if s.Len() == 0 {
		return Observation{}, ErrEmptySeries
	}
	return s.obs[len(s.obs)-1], nil
}

// NearestOnOrBefore returns the observation with the greatest date not after
// target. When target predates the whole series the earliest observation is
// returned and fallback is true.
func (s *TimeSeries) NearestOnOrBefore(target time.Time) (obs Observation, fallback bool, err error) {
	if s.Len() == 0 {
		return Observation{}, false, ErrEmptySeries
	}
	// first index with date > target
	i := sort.Search(len(s.obs), func(i int) bool { return s.obs[i].Date.After(target) })
	if i == 0 {
		return s.obs[0], true, nil
	}
	return s.obs[i-1], false, nil
}

// Years returns the distinct calendar years present, most recent first.
func (s *TimeSeries) Years() []int {
	if s.Len() == 0 {
		return nil
	}
	years := make([]int, 0)
	for i := len(s.obs) - 1; i >= 0; i-- {
		y := s.obs[i].Year()
		if len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// YearsForSelection returns the distinct years, descending, without the most
// recent one, which anchors "today".
func (s *TimeSeries) YearsForSelection() []int {
	years := s.Years()
	if len(years) <= 1 {
		return []int{}
	}
	return years[1:]
}

// AverageForYear returns the mean CPI of all observations in year.
func (s *TimeSeries) AverageForYear(year int) (float64, error) {
	if s.Len() == 0 {
		return 0, ErrEmptySeries
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	i := sort.Search(len(s.obs), func(i int) bool { return !s.obs[i].Date.Before(start) })
	var sum float64
	n := 0
	for ; i < len(s.obs) && s.obs[i].Year() == year; i++ {
		sum += s.obs[i].CPI
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}
	return sum / float64(n), nil
}
