package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskpulse/internal/scheduler"
	"github.com/fastygo/taskpulse/usecase/digest"
	"github.com/fastygo/taskpulse/usecase/maintenance"
	"github.com/fastygo/taskpulse/usecase/sweep"
)

type sweepStub struct{ calls int }

func (s *sweepStub) Run(context.Context, time.Time) (sweep.Report, error) {
	s.calls++
	return sweep.Report{}, nil
}

type digestStub struct{ kinds []digest.Kind }

func (d *digestStub) Run(_ context.Context, kind digest.Kind, _ time.Time) (digest.Report, error) {
	d.kinds = append(d.kinds, kind)
	return digest.Report{Failed: 1, Err: errors.New("blocked")}, nil
}

type cleanupStub struct{}

func (cleanupStub) Run(context.Context, time.Time) (maintenance.Result, error) {
	return maintenance.Result{}, nil
}

func TestRegisterJobs(t *testing.T) {
	s := scheduler.New(scheduler.Config{}, nil, nil)
	sw := &sweepStub{}
	dg := &digestStub{}

	err := RegisterJobs(s, JobDeps{Sweep: sw, Digest: dg, Cleanup: cleanupStub{}}, JobSchedule{
		SweepInterval: 5 * time.Minute,
		Morning:       ClockTime{Hour: 9},
		Evening:       ClockTime{Hour: 18},
		Cleanup:       ClockTime{Hour: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		JobDeadlineSweep: false,
		JobMorningDigest: false,
		JobEveningDigest: false,
		JobCleanup:       false,
	}, s.Status())

	var triggers []string
	for _, job := range s.Jobs() {
		triggers = append(triggers, job.Name+" "+job.Trigger)
	}
	assert.ElementsMatch(t, []string{
		"cleanup daily at 03:00",
		"deadline_sweep every 5m0s",
		"evening_digest daily at 18:00",
		"morning_digest daily at 09:00",
	}, triggers)
}

func TestDigestJobSurfacesItemErrors(t *testing.T) {
	dg := &digestStub{}
	run := digestJob(dg, digest.Evening, time.Now)

	err := run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 items failed")
	assert.Equal(t, []digest.Kind{digest.Evening}, dg.kinds)
}
