package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"inflation/internal/amqp"
	"inflation/internal/dataset"
)

type fakeReloader struct {
	calls int
	err   error
}

func (f *fakeReloader) Reload(ctx context.Context) (*dataset.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.Snapshot{Version: uint64(f.calls)}, nil
}

func TestHandleDatasetUpdated(t *testing.T) {
	target := &fakeReloader{}
	w := NewReloadWorker(target, nil)
	ctx := context.Background()
	latest := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := w.HandleDatasetUpdated(ctx, amqp.NewDatasetUpdatedMessage(2, "csv:cpi.csv", 40, latest)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.calls != 1 {
		t.Fatalf("reloads = %d, want 1", target.calls)
	}

	// redelivery and older imports do not reload again
	for _, id := range []int64{2, 1} {
		if err := w.HandleDatasetUpdated(ctx, amqp.NewDatasetUpdatedMessage(id, "csv:cpi.csv", 40, latest)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if target.calls != 1 {
		t.Fatalf("reloads = %d, want 1", target.calls)
	}

	if err := w.HandleDatasetUpdated(ctx, amqp.NewDatasetUpdatedMessage(3, "csv:cpi.csv", 41, latest)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.calls != 2 {
		t.Fatalf("reloads = %d, want 2", target.calls)
	}
}

func TestHandleDatasetUpdatedReloadFailure(t *testing.T) {
	boom := errors.New("source unavailable")
	target := &fakeReloader{err: boom}
	w := NewReloadWorker(target, nil)
	msg := amqp.NewDatasetUpdatedMessage(5, "worldbank:NGA/FP.CPI.TOTL", 60, time.Now())

	if err := w.HandleDatasetUpdated(context.Background(), msg); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	// a failed import can be retried
	target.err = nil
	if err := w.HandleDatasetUpdated(context.Background(), msg); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if target.calls != 2 {
		t.Fatalf("reloads = %d, want 2", target.calls)
	}
}
