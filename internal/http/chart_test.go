package http

import (
	"strings"
	"testing"
	"time"

	"inflation/internal/core"
)

func TestBuildSeriesChart(t *testing.T) {
	obs := []core.Observation{
		{Date: time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), CPI: 100},
		{Date: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), CPI: 200},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), CPI: 400},
	}
	c := buildSeriesChart(obs)
	if c.Empty {
		t.Fatal("chart should not be empty")
	}

	points := strings.Split(c.Points, " ")
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %q", c.Points)
	}
	// first point sits bottom-left, last top-right
	if points[0] != "32.0,188.0" {
		t.Errorf("first point = %s", points[0])
	}
	if points[2] != "624.0,16.0" {
		t.Errorf("last point = %s", points[2])
	}
	if c.MinLabel != "100" || c.MaxLabel != "400" {
		t.Errorf("labels = %s..%s", c.MinLabel, c.MaxLabel)
	}
	if len(c.Ticks) == 0 || len(c.Ticks) > maxTicks+1 {
		t.Errorf("unexpected tick count %d", len(c.Ticks))
	}
	if c.Ticks[0].Label != "2014" {
		t.Errorf("first tick = %s", c.Ticks[0].Label)
	}
}

func TestBuildSeriesChartDegenerate(t *testing.T) {
	if !buildSeriesChart(nil).Empty {
		t.Error("no observations should give an empty chart")
	}

	one := buildSeriesChart([]core.Observation{{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), CPI: 50}})
	if one.Points != "328.0,102.0" {
		t.Errorf("single point should be centred, got %q", one.Points)
	}
}
