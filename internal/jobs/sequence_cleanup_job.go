package jobs

import (
	"context"
	"log/slog"
	"time"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultSequenceRetentionDays keeps a week of daily counters.
	DefaultSequenceRetentionDays = 7

	// SequenceCleanupSchedule runs shortly after midnight, seconds first.
	SequenceCleanupSchedule = "0 5 0 * * *"
)

// SequenceCleanupJob prunes order number counters of past days. Counters are
// only read for the current day, so old rows are dead weight.
type SequenceCleanupJob struct {
	sequences ports.SequenceRepository
	retention int
	now       func() time.Time
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewSequenceCleanupJob(
	sequences ports.SequenceRepository,
	retentionDays int,
	now func() time.Time,
	logger *slog.Logger,
) *SequenceCleanupJob {
	if retentionDays < 1 {
		retentionDays = DefaultSequenceRetentionDays
	}
	if now == nil {
		now = time.Now
	}
	return &SequenceCleanupJob{
		sequences: sequences,
		retention: retentionDays,
		now:       now,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "sequence_cleanup_job"),
	}
}

// Start schedules the cleanup.
func (j *SequenceCleanupJob) Start() error {
	_, err := j.cron.AddFunc(SequenceCleanupSchedule, func() {
		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Sequence cleanup job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Sequence cleanup job started",
		"schedule", SequenceCleanupSchedule,
		"retention_days", j.retention)
	return nil
}

// RunOnce deletes counters older than the retention window and returns how
// many rows went away.
func (j *SequenceCleanupJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := order.DayKey(j.now().AddDate(0, 0, -j.retention))

	removed, err := j.sequences.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.InfoContext(ctx, "Pruned order sequences", "before", cutoff, "removed", removed)
	}
	return removed, nil
}

// Stop waits for a running cleanup to finish.
func (j *SequenceCleanupJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Sequence cleanup job stopped")
}
