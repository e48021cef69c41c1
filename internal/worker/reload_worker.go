// Package worker reacts to dataset update notifications.
package worker

import (
	"context"
	"fmt"
	"sync"

	"inflation/internal/amqp"
	"inflation/internal/dataset"
	applog "inflation/internal/log"
)

// ReloadWorker reloads the dataset when an import is announced.
type ReloadWorker struct {
	target dataset.Reloader
	logger *applog.Logger

	mu         sync.Mutex
	lastImport int64
}

func NewReloadWorker(target dataset.Reloader, logger *applog.Logger) *ReloadWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ReloadWorker{target: target, logger: logger.WithComponent(applog.ComponentAMQP)}
}

// HandleDatasetUpdated processes a single dataset.updated message. Messages
// for an import that was already loaded are acknowledged without reloading.
func (w *ReloadWorker) HandleDatasetUpdated(ctx context.Context, msg *amqp.DatasetUpdatedMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if msg.ImportID != 0 && msg.ImportID <= w.lastImport {
		w.logger.DebugContext(ctx, "Skipping dataset update already loaded",
			"import_id", msg.ImportID,
			"last_import_id", w.lastImport)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing dataset update",
		"import_id", msg.ImportID,
		applog.FieldSource, msg.Source,
		applog.FieldObservations, msg.Observations,
		applog.FieldLatestDate, msg.LatestDate)

	snap, err := w.target.Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload dataset for import %d: %w", msg.ImportID, err)
	}
	if msg.ImportID > w.lastImport {
		w.lastImport = msg.ImportID
	}

	w.logger.InfoContext(ctx, "Dataset reloaded",
		"import_id", msg.ImportID,
		applog.FieldVersion, snap.Version)
	return nil
}
