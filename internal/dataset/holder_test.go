package dataset

import (
	"context"
	"errors"
	"sync"
	"testing"

	"inflation/internal/core"
)

// stubSource returns the rows set on it, or err.
type stubSource struct {
	mu    sync.Mutex
	rows  []core.RawObservation
	err   error
	calls int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]core.RawObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubSource) set(rows []core.RawObservation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.err = rows, err
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	src := &stubSource{rows: []core.RawObservation{
		{Date: "2014-01-01", Value: "100"},
		{Date: "2015-01-01", Value: "."},
		{Date: "not a date", Value: "101"},
		{Date: "2024-01-01", Value: "400"},
	}}
	series, err := Load(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 observations, got %d", series.Len())
	}
}

func TestLoadEmpty(t *testing.T) {
	src := &stubSource{rows: []core.RawObservation{{Date: "2014-01-01", Value: ""}}}
	if _, err := Load(context.Background(), src, nil); !errors.Is(err, core.ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestNewHolderFailsOnBadDataset(t *testing.T) {
	src := &stubSource{err: errors.New("unreachable")}
	if _, err := NewHolder(context.Background(), src, nil); err == nil {
		t.Fatal("expected startup error")
	}
}

func TestHolderReload(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{rows: []core.RawObservation{
		{Date: "2014-01-01", Value: "100"},
		{Date: "2024-01-01", Value: "400"},
	}}
	h, err := NewHolder(ctx, src, nil)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	first := h.Current()
	if first.Version != 1 || first.Source != "stub" || first.Calculator == nil {
		t.Fatalf("unexpected first snapshot %+v", first)
	}

	src.set(append(src.rows, core.RawObservation{Date: "2025-01-01", Value: "500"}), nil)
	snap, err := h.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap.Version != 2 || h.Current() != snap || snap.Series.Len() != 3 {
		t.Fatalf("expected version 2 with 3 observations, got %+v", snap)
	}
	if first.Series.Len() != 2 {
		t.Fatal("previous snapshot must not change")
	}

	src.set(nil, errors.New("source down"))
	if _, err := h.Reload(ctx); err == nil {
		t.Fatal("expected reload error")
	}
	if h.Current() != snap {
		t.Fatal("failed reload must keep the active snapshot")
	}
}

func TestSchedulerReload(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{rows: []core.RawObservation{{Date: "2024-01-01", Value: "400"}}}
	h, err := NewHolder(ctx, src, nil)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}

	if _, err := NewScheduler("not a schedule", h, nil); err == nil {
		t.Fatal("expected schedule parse error")
	}

	s, err := NewScheduler("@daily", h, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.reload()
	if h.Current().Version != 2 {
		t.Fatalf("expected a scheduled reload to bump the version, got %d", h.Current().Version)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- s.Run(runCtx) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
