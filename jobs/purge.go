package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/airwatch-bd/airwatch/internal/jobs"
)

// SessionPurger deletes expired login sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// PurgeSessionsJob processes TaskPurgeLoginSessions tasks.
type PurgeSessionsJob struct {
	purger  SessionPurger
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewPurgeSessionsJob constructs a PurgeSessionsJob.
func NewPurgeSessionsJob(purger SessionPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeSessionsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeSessionsJob{purger: purger, logger: logger, metrics: metrics}
}

// Handle implements asynq.HandlerFunc.
func (j *PurgeSessionsJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track(TaskPurgeLoginSessions)
	n, err := j.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		j.logger.Error("purge login sessions", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.AddPurged(n)
	j.logger.Info("purged login sessions", slog.Int64("rows", n))
	return tracker.End(nil)
}
