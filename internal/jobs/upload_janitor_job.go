package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UploadJanitorJobName is the name of the unclaimed upload cleanup job
const UploadJanitorJobName = "upload_janitor"

// UploadPurger removes uploads that no quote request claimed in time
type UploadPurger interface {
	PurgeUnclaimed(ctx context.Context, retention time.Duration) (int, error)
}

// UploadJanitorJob deletes images that were uploaded but never attached to a
// submitted quote request.
type UploadJanitorJob struct {
	purger    UploadPurger
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewUploadJanitorJob creates the cleanup job
func NewUploadJanitorJob(purger UploadPurger, retention, timeout time.Duration, logger *zap.Logger) *UploadJanitorJob {
	return &UploadJanitorJob{
		purger:    purger,
		retention: retention,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run executes one cleanup pass
func (j *UploadJanitorJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed, err := j.purger.PurgeUnclaimed(ctx, j.retention)
	if err != nil {
		j.logger.Error("upload janitor failed",
			zap.Int("removed", removed),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("upload janitor completed",
		zap.Int("removed", removed),
		zap.Duration("retention", j.retention),
		zap.Duration("duration", time.Since(start)))
}

// RegisterUploadJanitorJob registers the cleanup job with the scheduler
func RegisterUploadJanitorJob(scheduler *Scheduler, purger UploadPurger, logger *zap.Logger, cronExpr string, retention, timeout time.Duration) error {
	job := NewUploadJanitorJob(purger, retention, timeout, logger)
	return scheduler.AddJob(UploadJanitorJobName, cronExpr, job.Run)
}
