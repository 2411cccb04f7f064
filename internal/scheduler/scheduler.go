// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus is the outcome of the most recent run of a job
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run"`
}

// Scheduler manages background jobs. A job that is still running when its
// next tick arrives is skipped, and a panicking job is recovered and logged.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	status  map[string]*JobStatus
	entries map[string]cron.EntryID
}

// New creates a new scheduler. Schedules use the six-field (seconds) cron format
// or descriptors such as "@hourly" and "@every 30m".
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log:     log,
		status:  make(map[string]*JobStatus),
		entries: make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule. Job names must be unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.status[job.Name()]; exists {
		return fmt.Errorf("job %s is already registered", job.Name())
	}

	id, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}
	s.status[job.Name()] = &JobStatus{Name: job.Name(), Schedule: schedule}
	s.entries[job.Name()] = id

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(job)
}

// Jobs returns a snapshot of every registered job, sorted by name
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]JobStatus, 0, len(s.status))
	for name, st := range s.status {
		snapshot := *st
		if id, ok := s.entries[name]; ok {
			snapshot.NextRun = s.cron.Entry(id).Next
		}
		jobs = append(jobs, snapshot)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

func (s *Scheduler) run(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	started := time.Now()
	err := job.Run()
	s.record(job.Name(), started, err)

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		return err
	}
	s.log.Debug().
		Str("job", job.Name()).
		Dur("duration", time.Since(started)).
		Msg("Job completed")
	return nil
}

func (s *Scheduler) record(name string, started time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.status[name]
	if !ok {
		// RunNow on an unregistered job
		return
	}
	st.Runs++
	st.LastRun = started
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
}

// cronLogger routes cron's own messages (skips, recovered panics) to zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
