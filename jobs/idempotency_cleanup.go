package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/coma-workspace/coma-workspace/internal/jobs"
)

// KeyCleaner prunes processed idempotency keys past retention.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyCleanupJob drops idempotency keys past their retention window
// so the uniqueness table stays small.
type IdempotencyCleanupJob struct {
	Keys   KeyCleaner
	Logger *slog.Logger
	Runs   *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob initialises the cleanup handler.
func NewIdempotencyCleanupJob(keys KeyCleaner, logger *slog.Logger, runs *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{
		Keys:   keys,
		Logger: logger,
		Runs:   runs,
	}
}

// Handle executes the cleanup.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Runs.Track("idempotency_cleanup")

	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}

	if err := j.Keys.Cleanup(ctx, retention); err != nil {
		return tracker.End(err)
	}
	if j.Logger != nil {
		j.Logger.Info("idempotency keys pruned", slog.Duration("retention", retention))
	}
	return tracker.End(nil)
}
