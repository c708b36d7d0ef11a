package queue

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler enqueues TimeClock's four time-based maintenance jobs
// (SPEC_FULL §6): hourly WAL checkpoint, daily raw-entries CSV export,
// daily off-device backup upload, and a daily AppState sweep. Built on
// robfig/cron/v3 with seconds precision, the same 6-field cron-string
// convention ("0 0 3 * * *" = daily at 3 AM) the teacher's own scheduler
// wiring uses.
type Scheduler struct {
	manager *Manager
	cron    *cron.Cron
	log     zerolog.Logger
}

// NewScheduler creates a new time-based scheduler.
func NewScheduler(manager *Manager) *Scheduler {
	return &Scheduler{
		manager: manager,
		cron:    cron.New(cron.WithSeconds()),
		log:     zerolog.Nop(),
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(log zerolog.Logger) {
	s.log = log.With().Str("component", "time_scheduler").Logger()
}

// Start registers all four jobs and starts the cron runner. Safe to call
// once; calling it again after Stop creates a fresh run.
func (s *Scheduler) Start() {
	s.mustAddJob("0 0 * * * *", func() { s.enqueue(JobTypeWALCheckpoint, PriorityLow) })
	s.mustAddJob("0 0 1 * * *", func() { s.enqueue(JobTypeRawEntriesExport, PriorityMedium) })
	s.mustAddJob("0 15 1 * * *", func() { s.enqueue(JobTypeBackupUpload, PriorityMedium) })
	s.mustAddJob("0 0 3 * * *", func() { s.enqueue(JobTypeMaintenanceSweep, PriorityLow) })

	s.cron.Start()
	s.log.Info().Msg("time scheduler started")
}

// Stop drains in-flight cron invocations and discards all registered
// entries so a subsequent Start begins from a clean schedule.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron = cron.New(cron.WithSeconds())
	s.log.Info().Msg("time scheduler stopped")
}

func (s *Scheduler) mustAddJob(spec string, fn func()) {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		s.log.Error().Err(err).Str("spec", spec).Msg("failed to register scheduled job, it will never run")
	}
}

func (s *Scheduler) enqueue(jobType JobType, priority Priority) {
	enqueued := s.manager.EnqueueIfShouldRun(jobType, priority, minIntervalFor(jobType), map[string]interface{}{})
	if enqueued {
		s.log.Info().Str("job_type", string(jobType)).Msg("enqueued time-based job")
	} else {
		s.log.Debug().Str("job_type", string(jobType)).Msg("skipped time-based job, already ran recently")
	}
}

// minIntervalFor guards against a duplicate enqueue on a restart landing
// within the same cron tick as the last run; cron itself already
// guarantees the fire cadence, this is a second check against history.
func minIntervalFor(jobType JobType) time.Duration {
	switch jobType {
	case JobTypeWALCheckpoint:
		return 55 * time.Minute
	default:
		return 23 * time.Hour
	}
}
