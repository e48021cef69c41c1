package dataset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"inflation/internal/core"
	applog "inflation/internal/log"
)

// Snapshot is one loaded, immutable version of the dataset.
type Snapshot struct {
	Version    uint64
	Source     string
	LoadedAt   time.Time
	Series     *core.TimeSeries
	Calculator *core.Calculator
}

// Holder owns the active snapshot. Readers call Current and never block;
// reloads build a new snapshot and swap it in atomically.
type Holder struct {
	src     Source
	logger  *applog.Logger
	sl      *applog.StructuredLogger
	current atomic.Pointer[Snapshot]

	reloadMu sync.Mutex
	version  uint64
}

// NewHolder performs the one-time load-and-validate. The caller must treat an
// error as fatal and stop before serving requests.
func NewHolder(ctx context.Context, src Source, logger *applog.Logger) (*Holder, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	h := &Holder{
		src:    src,
		logger: logger.WithComponent(applog.ComponentDataset),
		sl:     applog.NewStructuredLogger(logger),
	}
	if _, err := h.Reload(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// Current returns the active snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Reload loads the source again. On failure the active snapshot is kept.
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	series, err := Load(ctx, h.src, h.logger)
	if err != nil {
		if prev := h.current.Load(); prev != nil {
			h.sl.LogError(ctx, "Dataset reload failed, keeping previous snapshot", err,
				applog.ComponentDataset, applog.OpReload,
				applog.LogFields{applog.FieldVersion: prev.Version})
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	h.version++
	snap := &Snapshot{
		Version:    h.version,
		Source:     h.src.Name(),
		LoadedAt:   time.Now(),
		Series:     series,
		Calculator: core.NewCalculator(series),
	}
	h.current.Store(snap)
	h.sl.LogDatasetLoaded(ctx, snap.Source, snap.Version, series)
	return snap, nil
}
