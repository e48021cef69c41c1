package http

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || !rl.allow("a") {
		t.Fatal("first two requests must pass")
	}
	if rl.allow("a") {
		t.Fatal("third request must be limited")
	}
	if !rl.allow("b") {
		t.Fatal("other clients are independent")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("a") {
		t.Fatal("window should reset after a quiet minute")
	}
	if rl.totalHits() != 1 || rl.activeClients() != 2 {
		t.Fatalf("hits=%d clients=%d", rl.totalHits(), rl.activeClients())
	}

	now = now.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if rl.activeClients() != 0 {
		t.Fatalf("stale clients not removed: %d", rl.activeClients())
	}
}

func TestRateLimiterSteadySlowClient(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(60)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	rejected := 0
	for i := 0; i < 120; i++ {
		if !rl.allow("1.2.3.4") {
			rejected++
		}
		now = now.Add(50 * time.Second)
	}
	if rejected != 0 {
		t.Fatalf("120 requests spaced 50s apart: %d rejected, want 0", rejected)
	}
}

func TestRateLimiterRejectedRequestsDoNotExtendWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	rl := newRateLimiter(2)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	steps := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{time.Second, true},
		{2 * time.Second, false},
		{30 * time.Second, false},
		{59 * time.Second, false},
		{60 * time.Second, true},
		{61 * time.Second, true},
		{62 * time.Second, false},
	}
	for _, step := range steps {
		now = start.Add(step.offset)
		if got := rl.allow("c"); got != step.want {
			t.Fatalf("allow at +%v = %v, want %v", step.offset, got, step.want)
		}
	}
	if rl.totalHits() != 4 {
		t.Fatalf("hits = %d, want 4", rl.totalHits())
	}
}
