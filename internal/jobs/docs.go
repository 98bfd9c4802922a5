// Package jobs provides scheduled background tasks for the order board.
//
// Jobs are built on github.com/robfig/cron/v3 with second-resolution
// schedules.
//
// # Available Jobs
//
// 1. SequenceCleanupJob - Runs daily at 00:05:00 and deletes the order number
// counters of days older than the retention window
//
// # Usage
//
//	jobManager := jobs.NewJobManager(sequenceRepository, cfg.SequenceRetentionDays, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and retried at the next tick. Order numbers already
// issued never depend on pruned counters.
package jobs
