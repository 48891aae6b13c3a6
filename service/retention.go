package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionJob periodically deletes stored schedules older than maxAge.
type RetentionJob struct {
	schedules *ScheduleService
	maxAge    time.Duration
	cron      *cron.Cron
}

// NewRetentionJob parses spec, a standard cron expression or a descriptor such
// as "@every 1h", and registers the purge on it. The job does not run until Start.
func NewRetentionJob(schedules *ScheduleService, spec string, maxAge time.Duration) (*RetentionJob, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %s", maxAge)
	}

	job := &RetentionJob{
		schedules: schedules,
		maxAge:    maxAge,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	if _, err := job.cron.AddFunc(spec, func() {
		if _, err := job.RunOnce(context.Background()); err != nil {
			slog.Error("Retention run failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}

	return job, nil
}

// RunOnce purges expired schedules immediately.
func (j *RetentionJob) RunOnce(ctx context.Context) (int64, error) {
	removed, err := j.schedules.Purge(ctx, j.maxAge)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		slog.Info("Purged expired schedules", "count", removed, "max_age", j.maxAge)
	}
	return removed, nil
}

func (j *RetentionJob) Start() {
	j.cron.Start()
}

// Stop halts the scheduler. The returned context is done once a running purge finishes.
func (j *RetentionJob) Stop() context.Context {
	return j.cron.Stop()
}
