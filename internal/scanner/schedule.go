package scanner

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// JobHandle identifies a scheduled recurring job.
type JobHandle int

// Scheduler is the timer capability the registry runs on. The production
// implementation wraps robfig/cron; tests substitute a fake so no real time
// passes.
type Scheduler interface {
	// Schedule runs fn every interval until cancelled.
	Schedule(interval time.Duration, fn func()) (JobHandle, error)
	// Cancel stops a job. Unknown handles are ignored.
	Cancel(h JobHandle)
	// Stop stops the underlying timer machinery. Running jobs finish.
	Stop()
}

// CronScheduler schedules jobs on a robfig/cron runner using @every specs.
type CronScheduler struct {
	c *cron.Cron
}

// NewCronScheduler returns a started CronScheduler.
func NewCronScheduler() *CronScheduler {
	c := cron.New()
	c.Start()
	return &CronScheduler{c: c}
}

func (s *CronScheduler) Schedule(interval time.Duration, fn func()) (JobHandle, error) {
	id, err := s.c.AddFunc(fmt.Sprintf("@every %s", interval), fn)
	if err != nil {
		return 0, err
	}
	return JobHandle(id), nil
}

func (s *CronScheduler) Cancel(h JobHandle) {
	s.c.Remove(cron.EntryID(h))
}

func (s *CronScheduler) Stop() {
	s.c.Stop()
}
