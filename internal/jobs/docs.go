// Package jobs provides scheduled background tasks for the split-shipment
// service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations behind the queue consumer.
//
// # Available Jobs
//
// 1. RetryDispatchJob - Runs every second to re-dispatch failed event
// deliveries from the durable retry queue, with capped exponential backoff
// and dead-lettering after the retry budget is spent
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(dispatcher, queue.IsSkip, jobQueueRepository, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The retry sweep uses the cron expression "* * * * * *" which means it runs
// every second. Each sweep loads at most a fixed batch of due jobs, so a
// long outage drains gradually instead of flooding the gateway.
//
// # Error Handling
//
// - Successful and skip-classified dispatches remove the retry job
// - Other failures reschedule the job with a capped doubling delay
// - Jobs past the retry budget move to the dead-letter set for operators
package jobs
