package schedule

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/siherrmann/chipnews/helper"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to a named job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job name.
func (j JobFunc) Name() string {
	return j.JobName
}

// Run calls the function.
func (j JobFunc) Run(ctx context.Context) error {
	return j.Fn(ctx)
}

// Scheduler runs jobs on cron specs. Specs use five fields
// (minute hour day month weekday) or descriptors like "@daily" and "@every 1h".
// A job still running when it is due again is skipped.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
	logger  *slog.Logger
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
		logger:  logger,
	}
}

// AddJob schedules job on spec.
func (s *Scheduler) AddJob(job Job, spec string) error {
	logger := s.logger.With(slog.String("job", job.Name()), slog.String("spec", spec))

	entryID, err := s.cron.AddFunc(spec, s.wrap(job, logger))
	if err != nil {
		logger.Error("Scheduling job failed", slog.String("error", err.Error()))
		return helper.NewError("add job", err)
	}

	s.mu.Lock()
	s.entries[job.Name()] = entryID
	s.mu.Unlock()

	logger.Info("Job scheduled")
	return nil
}

// Next returns the next run time of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	entryID, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(entryID).Next, true
}

// Start runs the scheduler in the background. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) wrap(job Job, logger *slog.Logger) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			logger.Info("Job skipped, still running")
			return
		}
		defer running.Store(false)

		start := time.Now()
		logger.Info("Job started")
		if err := job.Run(s.ctx); err != nil {
			logger.Error("Job failed", slog.String("error", err.Error()), slog.Duration("duration", time.Since(start)))
			return
		}
		logger.Info("Job finished", slog.Duration("duration", time.Since(start)))
	}
}
