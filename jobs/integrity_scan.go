package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/coma-workspace/coma-workspace/internal/jobs"
	"github.com/coma-workspace/coma-workspace/internal/ledger"
	"github.com/coma-workspace/coma-workspace/internal/observability"
)

// EntryLoader is the slice of the ledger repository the scan needs.
type EntryLoader interface {
	LoadEntries(ctx context.Context) ([]ledger.Entry, error)
}

// IntegrityScanJob audits the full ledger sequence for structural problems.
type IntegrityScanJob struct {
	Entries EntryLoader
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Runs    *jobmetrics.Metrics
	clock   func() time.Time
}

// NewIntegrityScanJob initialises the integrity scan handler.
func NewIntegrityScanJob(entries EntryLoader, logger *slog.Logger, metrics *observability.Metrics, runs *jobmetrics.Metrics) *IntegrityScanJob {
	return &IntegrityScanJob{
		Entries: entries,
		Logger:  logger,
		Metrics: metrics,
		Runs:    runs,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the integrity scan.
func (j *IntegrityScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Runs.Track("ledger_integrity_scan")

	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}

	entries, err := j.Entries.LoadEntries(ctx)
	if err != nil {
		return tracker.End(err)
	}

	problems := ledger.CheckIntegrity(entries)
	j.Metrics.SetIntegrityProblems(len(problems))

	if j.Logger != nil {
		for _, p := range problems {
			j.Logger.Warn("ledger integrity problem", slog.String("problem", p))
		}
		j.Logger.Info("ledger integrity scan finished",
			slog.Time("scheduled_for", payload.ScheduledFor),
			slog.Time("ran_at", j.clock()),
			slog.Int("entries", len(entries)),
			slog.Int("problems", len(problems)))
	}
	return tracker.End(nil)
}
