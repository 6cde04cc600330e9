package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fastygo/taskpulse/internal/scheduler"
	"github.com/fastygo/taskpulse/usecase/digest"
	"github.com/fastygo/taskpulse/usecase/maintenance"
	"github.com/fastygo/taskpulse/usecase/sweep"
)

// Job names exposed through the admin API.
const (
	JobDeadlineSweep = "deadline_sweep"
	JobMorningDigest = "morning_digest"
	JobEveningDigest = "evening_digest"
	JobCleanup       = "cleanup"
	JobActivityFlush = "activity_flush"
)

type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (sweep.Report, error)
}

type DigestRunner interface {
	Run(ctx context.Context, kind digest.Kind, now time.Time) (digest.Report, error)
}

type CleanupRunner interface {
	Run(ctx context.Context, now time.Time) (maintenance.Result, error)
}

type Flusher interface {
	Flush(ctx context.Context) (FlushReport, error)
}

// ClockTime is an hour and minute of the day.
type ClockTime struct {
	Hour   int
	Minute int
}

// JobSchedule holds the triggers of the built-in jobs.
type JobSchedule struct {
	SweepInterval time.Duration
	FlushInterval time.Duration
	Morning       ClockTime
	Evening       ClockTime
	Cleanup       ClockTime
}

// JobDeps are the bodies behind the built-in jobs. A nil Relay leaves out activity_flush.
type JobDeps struct {
	Sweep   SweepRunner
	Digest  DigestRunner
	Cleanup CleanupRunner
	Relay   Flusher
	Now     func() time.Time
}

// RegisterJobs adds the built-in jobs to s.
func RegisterJobs(s *scheduler.Scheduler, deps JobDeps, schedule JobSchedule) error {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	jobs := []scheduler.Job{
		{
			Name:    JobDeadlineSweep,
			Trigger: scheduler.Interval(schedule.SweepInterval),
			Run: func(ctx context.Context) error {
				report, err := deps.Sweep.Run(ctx, now())
				if err != nil {
					return err
				}
				return itemErrors(report.Failed, report.Err)
			},
		},
		{
			Name:    JobMorningDigest,
			Trigger: scheduler.DailyAt(schedule.Morning.Hour, schedule.Morning.Minute),
			Run:     digestJob(deps.Digest, digest.Morning, now),
		},
		{
			Name:    JobEveningDigest,
			Trigger: scheduler.DailyAt(schedule.Evening.Hour, schedule.Evening.Minute),
			Run:     digestJob(deps.Digest, digest.Evening, now),
		},
		{
			Name:    JobCleanup,
			Trigger: scheduler.DailyAt(schedule.Cleanup.Hour, schedule.Cleanup.Minute),
			Run: func(ctx context.Context) error {
				_, err := deps.Cleanup.Run(ctx, now())
				return err
			},
		},
	}
	if deps.Relay != nil {
		jobs = append(jobs, scheduler.Job{
			Name:    JobActivityFlush,
			Trigger: scheduler.Interval(schedule.FlushInterval),
			Run: func(ctx context.Context) error {
				report, err := deps.Relay.Flush(ctx)
				if err != nil {
					return err
				}
				return report.Err
			},
		})
	}

	for _, job := range jobs {
		if err := s.Register(job); err != nil {
			return err
		}
	}
	return nil
}

func digestJob(runner DigestRunner, kind digest.Kind, now func() time.Time) scheduler.JobFunc {
	return func(ctx context.Context) error {
		report, err := runner.Run(ctx, kind, now())
		if err != nil {
			return err
		}
		return itemErrors(report.Failed, report.Err)
	}
}

func itemErrors(failed int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%d items failed: %w", failed, err)
}
