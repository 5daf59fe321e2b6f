package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/basteen-Dev/pavilion/internal/jobs"
)

// DefaultIdempotencyRetentionDays bounds how long order retry keys live.
const DefaultIdempotencyRetentionDays = 7

// KeyCleaner deletes idempotency keys older than a cutoff.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob purges stale idempotency keys.
type IdempotencyCleanupJob struct {
	Store   KeyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle executes the purge.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	var p IdempotencyCleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.RetentionDays <= 0 {
		p.RetentionDays = DefaultIdempotencyRetentionDays
	}

	tracker := j.Metrics.Track(TaskIdempotencyCleanup)
	defer func() { err = tracker.End(err) }()

	removed, err := j.Store.Cleanup(ctx, time.Duration(p.RetentionDays)*24*time.Hour)
	if err != nil {
		logger.Error("idempotency cleanup failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddProcessed(TaskIdempotencyCleanup, removed)
	logger.Info("idempotency keys purged",
		slog.Int64("removed", removed),
		slog.Int("retention_days", p.RetentionDays))
	return nil
}
