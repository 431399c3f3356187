// Package jobs provides background job scheduling for the VDG API.
// It uses robfig/cron for cron-based job scheduling.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/logger"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrUnknownJob is returned by Trigger for a name that was never added
var ErrUnknownJob = errors.New("unknown job")

// DefaultTimeout bounds a single job run
const DefaultTimeout = 5 * time.Minute

// Job is one unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler manages background jobs using cron scheduling.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	metrics *observability.Metrics
	timeout time.Duration
	mu      sync.Mutex
	jobs    map[string]registered
}

type registered struct {
	entryID cron.EntryID
	job     Job
}

// NewScheduler creates a job scheduler. Schedules use the 6-field format with seconds.
func NewScheduler(base *zap.Logger, metrics *observability.Metrics) *Scheduler {
	cronLogger := zapCronLogger{base.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		)),
		logger:  base,
		metrics: metrics,
		timeout: DefaultTimeout,
		jobs:    make(map[string]registered),
	}
}

// Start starts the scheduler. Jobs added before this call will begin running.
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Strings("jobs", s.JobNames()))
	s.cron.Start()
}

// Stop stops scheduling. The returned context is done once running jobs have completed.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// AddJob schedules job with a cron expression, for example "0 0 3 * * *" for 03:00 every day
// or "@every 1h".
func (s *Scheduler) AddJob(cronExpr string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		_ = s.run(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobs[name] = registered{entryID: entryID, job: job}
	s.logger.Info("added scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr))
	return nil
}

// RemoveJob removes a job by name.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	s.cron.Remove(entry.entryID)
	delete(s.jobs, name)

	s.logger.Info("removed scheduled job", zap.String("job_name", name))
	return nil
}

// Trigger runs a registered job now, outside its schedule, and waits for it
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	entry, exists := s.jobs[name]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, entry.job)
}

// JobNames returns the names of all registered jobs, sorted.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// run executes one job as the system user with a timeout, logging and recording the outcome
func (s *Scheduler) run(ctx context.Context, job Job) error {
	log := logger.WithJob(s.logger, job.Name())
	ctx, cancel := context.WithTimeout(auth.WithUserContext(ctx, auth.SystemUser()), s.timeout)
	defer cancel()

	started := time.Now()
	log.Info("running job")
	err := job.Run(ctx)
	s.metrics.ObserveJob(job.Name(), started, err)
	if err != nil {
		log.Error("job failed", zap.Error(err), zap.Duration("duration", time.Since(started)))
		return err
	}
	log.Info("job completed", zap.Duration("duration", time.Since(started)))
	return nil
}

// zapCronLogger adapts zap to cron's logger interface
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
