// Package jobs runs the background tasks of the delivery service on
// github.com/robfig/cron/v3 schedules (six fields, seconds first).
//
// # Jobs
//
//  1. OutboxRelayJob publishes outbox messages: work item events to the role
//     queue, transition records to the history index. Default "*/5 * * * * *".
//  2. PendingWorkReportJob logs the size of each role's queue. Default
//     "0 */15 * * * *".
//
// # Usage
//
//	manager := jobs.NewJobManager().
//		Add("outbox relay", jobs.NewOutboxRelayJob(relay, "", 100, 10, logger)).
//		Add("pending work report", jobs.NewPendingWorkReportJob(pendingWork, "", logger))
//
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// Failures are logged and retried on the next tick; the relay keeps the
// attempt count of every failed message.
package jobs
