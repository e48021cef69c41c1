package http

import (
	"strconv"
	"strings"
	"time"

	"inflation/internal/core"
)

const (
	chartWidth  = 640
	chartHeight = 220
	chartPad    = 32
	maxTicks    = 8
)

// seriesChart is the view model of the inline SVG line chart.
type seriesChart struct {
	Width, Height int
	Points        string // SVG polyline points
	Ticks         []chartTick
	Left, Right   int
	Top, Bottom   int
	MinLabel      string
	MaxLabel      string
	Empty         bool
}

type chartTick struct {
	X     string
	Label string
}

// buildSeriesChart projects the observations onto an SVG viewport: time on
// the x axis, CPI on the y axis, one tick per year thinned to maxTicks.
func buildSeriesChart(obs []core.Observation) seriesChart {
	c := seriesChart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPad,
		Right:  chartWidth - chartPad/2,
		Top:    chartPad / 2,
		Bottom: chartHeight - chartPad,
	}
	if len(obs) == 0 {
		c.Empty = true
		return c
	}

	minCPI, maxCPI := obs[0].CPI, obs[0].CPI
	for _, o := range obs {
		if o.CPI < minCPI {
			minCPI = o.CPI
		}
		if o.CPI > maxCPI {
			maxCPI = o.CPI
		}
	}
	start, end := obs[0].Date, obs[len(obs)-1].Date
	span := end.Sub(start)

	x := func(t time.Time) float64 {
		if span <= 0 {
			return float64(c.Left+c.Right) / 2
		}
		return float64(c.Left) + float64(c.Right-c.Left)*float64(t.Sub(start))/float64(span)
	}
	y := func(v float64) float64 {
		if maxCPI == minCPI {
			return float64(c.Top+c.Bottom) / 2
		}
		return float64(c.Bottom) - float64(c.Bottom-c.Top)*(v-minCPI)/(maxCPI-minCPI)
	}

	var b strings.Builder
	for i, o := range obs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(coord(x(o.Date)))
		b.WriteByte(',')
		b.WriteString(coord(y(o.CPI)))
	}
	c.Points = b.String()
	c.MinLabel = core.FormatWhole(minCPI)
	c.MaxLabel = core.FormatWhole(maxCPI)

	first, last := start.Year(), end.Year()
	step := (last-first)/maxTicks + 1
	for year := first; year <= last; year += step {
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		if t.Before(start) {
			t = start
		}
		c.Ticks = append(c.Ticks, chartTick{X: coord(x(t)), Label: strconv.Itoa(year)})
	}
	return c
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
