// Package dataset loads CPI observations from a configured source and keeps
// the active immutable series available to readers.
package dataset

import (
	"context"
	"fmt"

	"inflation/internal/core"
	applog "inflation/internal/log"
)

// Source yields the raw rows of a CPI dataset.
type Source interface {
	// Name identifies the source in logs and events, e.g. "csv:./data/cpi.csv".
	Name() string
	Fetch(ctx context.Context) ([]core.RawObservation, error)
}

// Load fetches rows from src and builds a validated series. Rows that cannot
// be parsed are logged and skipped; an empty result fails with
// core.ErrEmptySeries.
func Load(ctx context.Context, src Source, logger *applog.Logger) (*core.TimeSeries, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentDataset)

	rows, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name(), err)
	}

	obs, skipped := core.ParseObservations(rows)
	for _, rowErr := range skipped {
		logger.WarnContext(ctx, "Skipping malformed row",
			applog.FieldSource, src.Name(),
			"row", rowErr.Row,
			"date", rowErr.Raw.Date,
			"value", rowErr.Raw.Value,
			applog.FieldError, rowErr.Err)
	}

	series, err := core.NewTimeSeries(obs)
	if err != nil {
		return nil, fmt.Errorf("build series from %s: %w", src.Name(), err)
	}

	logger.DebugContext(ctx, "Parsed dataset",
		applog.FieldSource, src.Name(),
		"rows", len(rows),
		applog.FieldObservations, series.Len(),
		"skipped", len(skipped))
	return series, nil
}
