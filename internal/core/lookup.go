package core

import "time"

// Lookup resolves CPI values for the queries the calculator needs.
// It holds no state besides the series it reads.
type Lookup struct {
	series *TimeSeries
}

// PastCPI is the result of a relative lookup. Fallback reports that the
// target date predates the series and the earliest observation was used.
type PastCPI struct {
	Observation
	Target   time.Time
	Fallback bool
}

func NewLookup(series *TimeSeries) Lookup {
	return Lookup{series: series}
}

// Latest returns the most recent observation.
func (l Lookup) Latest() (Observation, error) {
	return l.series.Latest()
}

func (l Lookup) LatestCPI() (float64, error) {
	latest, err := l.Latest()
	if err != nil {
		return 0, err
	}
	return latest.CPI, nil
}

// CPINYearsAgo resolves the CPI n calendar years before the latest observation
// using the nearest-on-or-before policy.
func (l Lookup) CPINYearsAgo(n int) (PastCPI, error) {
	latest, err := l.Latest()
	if err != nil {
		return PastCPI{}, err
	}
	target := subtractYears(latest.Date, n)
	obs, fallback, err := l.series.NearestOnOrBefore(target)
	if err != nil {
		return PastCPI{}, err
	}
	return PastCPI{Observation: obs, Target: target, Fallback: fallback}, nil
}

func (l Lookup) CPIForYear(year int) (float64, error) {
	return l.series.AverageForYear(year)
}

// subtractYears moves t back n years, clamping 29 February to the 28th
// instead of rolling into March.
func subtractYears(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y-n, m, 1, 0, 0, 0, 0, t.Location())
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(y-n, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
