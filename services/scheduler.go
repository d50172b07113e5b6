// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweepScheduler runs the expiration sweep on a fixed cadence. The sweep
// is stateless and idempotent over storage, so overlapping runs (or an extra
// run from the /internal/sweep endpoint) are safe.
func (s *SweeperService) StartSweepScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 5 minutes: resolve overdue rounds and stale waiting debates
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			report := s.Sweep(time.Now())
			log.Printf("🧹 [SWEEP] cancelled_waiting=%d advanced=%d completed=%d errors=%d",
				report.CancelledWaiting, report.Advanced, report.Completed, len(report.Errors))
		}),
	)
}
