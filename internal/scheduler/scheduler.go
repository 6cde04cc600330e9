package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
)

// ErrUnknownJob is returned for names that were never registered.
var ErrUnknownJob = errors.New("unknown job")

// JobFunc is the body of a scheduled job. A returned error is logged and never
// affects other jobs or later runs.
type JobFunc func(ctx context.Context) error

// Job is a named job definition.
type Job struct {
	Name    string
	Trigger Trigger
	Run     JobFunc
	// Timeout bounds one run. Zero uses the scheduler default.
	Timeout time.Duration
}

type Config struct {
	Location       *time.Location
	DefaultTimeout time.Duration
}

// JobInfo describes a registered job for admin endpoints.
type JobInfo struct {
	Name      string     `json:"name"`
	Trigger   string     `json:"trigger"`
	Scheduled bool       `json:"scheduled"`
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type registration struct {
	job     Job
	running atomic.Bool

	mu        sync.Mutex
	lastRun   time.Time
	lastError string
}

// Scheduler owns the job registry and the cron engine that fires them.
// A job never runs concurrently with itself: a firing that finds the previous run
// still in progress is skipped.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]*registration
	entries map[string]cron.EntryID
	lock    repository.JobLock
	cfg     Config
	logger  *zap.Logger
}

// New builds a scheduler. lock may be nil to rely on the in-process guard only.
func New(cfg Config, lock repository.JobLock, logger *zap.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		jobs:    make(map[string]*registration),
		entries: make(map[string]cron.EntryID),
		lock:    lock,
		cfg:     cfg,
		logger:  logger,
	}
}

// Register adds a job definition. It does not schedule it; Start does.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a body")
	}
	if _, err := job.Trigger.spec(); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	s.jobs[job.Name] = &registration{job: job}
	return nil
}

// Start schedules every registered job that is not scheduled yet and starts the engine.
// Calling it again is harmless.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureEngine()
	for _, name := range s.names() {
		if _, scheduled := s.entries[name]; scheduled {
			continue
		}
		if err := s.schedule(name); err != nil {
			return err
		}
	}
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.entries)))
	return nil
}

// Stop unschedules all jobs and waits for running ones until ctx expires.
// Definitions are kept so Start can schedule them again.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	engine := s.cron
	s.cron = nil
	s.entries = make(map[string]cron.EntryID)
	s.mu.Unlock()

	if engine == nil {
		return
	}
	stopCtx := engine.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with jobs still running")
	}
	s.logger.Info("scheduler stopped")
}

// Restart unschedules and schedules a single job again.
func (s *Scheduler) Restart(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	s.ensureEngine()
	if id, scheduled := s.entries[name]; scheduled {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
	if err := s.schedule(name); err != nil {
		return err
	}
	s.logger.Info("job restarted", zap.String("job", name))
	return nil
}

// Status reports, per registered job, whether it is currently scheduled.
func (s *Scheduler) Status() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]bool, len(s.jobs))
	for name := range s.jobs {
		_, scheduled := s.entries[name]
		status[name] = scheduled
	}
	return status
}

// Jobs returns a detailed view of every registered job, sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, name := range s.names() {
		reg := s.jobs[name]
		info := JobInfo{
			Name:    name,
			Trigger: reg.job.Trigger.String(),
			Running: reg.running.Load(),
		}
		if id, ok := s.entries[name]; ok && s.cron != nil {
			info.Scheduled = true
			if next := s.cron.Entry(id).Next; !next.IsZero() {
				info.NextRun = &next
			}
		}
		reg.mu.Lock()
		if !reg.lastRun.IsZero() {
			last := reg.lastRun
			info.LastRun = &last
		}
		info.LastError = reg.lastError
		reg.mu.Unlock()
		infos = append(infos, info)
	}
	return infos
}

func (s *Scheduler) ensureEngine() {
	if s.cron != nil {
		return
	}
	s.cron = cron.New(cron.WithSeconds(), cron.WithLocation(s.cfg.Location))
	s.cron.Start()
}

// schedule must be called with s.mu held and the engine running.
func (s *Scheduler) schedule(name string) error {
	reg := s.jobs[name]
	spec, err := reg.job.Trigger.spec()
	if err != nil {
		return err
	}
	id, err := s.cron.AddFunc(spec, func() { s.execute(reg) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.entries[name] = id
	return nil
}

func (s *Scheduler) names() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// execute runs one firing of a job and reports whether the body was invoked.
func (s *Scheduler) execute(reg *registration) (ran bool) {
	name := reg.job.Name
	log := s.logger.With(zap.String("job", name))

	if !reg.running.CompareAndSwap(false, true) {
		log.Warn("job skipped: previous run still in progress")
		return false
	}
	defer reg.running.Store(false)

	timeout := reg.job.Timeout
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = logger.ContextWithJob(ctx, name)

	if s.lock != nil {
		release, ok, err := s.lock.Acquire(ctx, name, timeout)
		switch {
		case err != nil:
			log.Warn("job lock unavailable, running with local guard only", zap.Error(err))
		case !ok:
			log.Info("job skipped: running on another instance")
			return false
		default:
			defer func() {
				if err := release(context.Background()); err != nil {
					log.Warn("job lock release failed", zap.Error(err))
				}
			}()
		}
	}

	started := time.Now()
	err := s.invoke(ctx, reg.job.Run)

	reg.mu.Lock()
	reg.lastRun = started
	reg.lastError = ""
	if err != nil {
		reg.lastError = err.Error()
	}
	reg.mu.Unlock()

	if err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(started)), zap.Error(err))
	} else {
		log.Debug("job finished", zap.Duration("took", time.Since(started)))
	}
	return true
}

// invoke turns a panic in the job body into an error.
func (s *Scheduler) invoke(ctx context.Context, run JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return run(ctx)
}
