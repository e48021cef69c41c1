package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applog "inflation/internal/log"
)

// Reloader is implemented by Holder.
type Reloader interface {
	Reload(ctx context.Context) (*Snapshot, error)
}

// Scheduler reloads the dataset on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	target  Reloader
	logger  *applog.Logger
	timeout time.Duration
}

// NewScheduler parses spec (standard five-field cron syntax or descriptors
// such as "@daily") and prepares a scheduler that reloads target.
func NewScheduler(spec string, target Reloader, logger *applog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Scheduler{
		cron:    cron.New(),
		target:  target,
		logger:  logger.WithComponent(applog.ComponentScheduler),
		timeout: 2 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.reload); err != nil {
		return nil, fmt.Errorf("parse reload schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if snap, err := s.target.Reload(ctx); err == nil {
		s.logger.Info("Scheduled reload completed", applog.FieldVersion, snap.Version)
	}
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.InfoContext(ctx, "Reload scheduler started", "next", s.cron.Entries()[0].Next)
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	return nil
}
