package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type (
	// Observation is one (date, CPI) data point.
	Observation struct {
		Date time.Time
		CPI  float64
	}

	// RawObservation is a row as delivered by a dataset source, before parsing.
	RawObservation struct {
		Date  string
		Value string
	}
)

var (
	ErrEmptySeries        = errors.New("empty series")
	ErrYearNotFound       = errors.New("year not found")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrInvalidObservation = errors.New("invalid observation")
	ErrDuplicateDate      = errors.New("duplicate observation date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingValue       = errors.New("missing value")
)

// Accepted date layouts, tried in order. A bare year maps to 1 January.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006-01-02T15:04:05Z07:00",
	"2006",
}

func (o Observation) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidObservation)
	}
	if math.IsNaN(o.CPI) || math.IsInf(o.CPI, 0) || o.CPI <= 0 {
		return fmt.Errorf("%w: cpi %v on %s must be positive", ErrInvalidObservation, o.CPI, o.Date.Format("2006-01-02"))
	}
	return nil
}

// Year returns the calendar year of the observation.
func (o Observation) Year() int {
	return o.Date.Year()
}

// ParseDate parses a calendar date in one of the accepted layouts.
// The result is normalised to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidObservation)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidObservation, s)
}

// ParseCPI parses a CPI value. FRED exports write "." for missing data,
// which is reported as ErrMissingValue so loaders can skip the row.
func ParseCPI(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.EqualFold(s, "na") || strings.EqualFold(s, "null") {
		return 0, ErrMissingValue
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable value %q", ErrInvalidObservation, s)
	}
	return v, nil
}

// Parse converts a raw row into a validated Observation.
func (r RawObservation) Parse() (Observation, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return Observation{}, err
	}
	cpi, err := ParseCPI(r.Value)
	if err != nil {
		return Observation{}, err
	}
	o := Observation{Date: date, CPI: cpi}
	if err := o.Validate(); err != nil {
		return Observation{}, err
	}
	return o, nil
}
