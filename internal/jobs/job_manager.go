package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"kitchenpos/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	sequenceCleanupJob *SequenceCleanupJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	sequences ports.SequenceRepository,
	retentionDays int,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		sequenceCleanupJob: NewSequenceCleanupJob(sequences, retentionDays, time.Now, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.sequenceCleanupJob.Start(); err != nil {
		return fmt.Errorf("failed to start sequence cleanup job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.sequenceCleanupJob.Stop()
}
