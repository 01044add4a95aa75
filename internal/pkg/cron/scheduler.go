package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a recurring background task, such as the open-shift compliance
// sweep. Fn receives the scheduler's context and is expected to return
// instead of blocking once that context is cancelled.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals. Jobs are independent:
// each gets its own ticker goroutine, and a failing run is logged and
// retried on the next tick rather than stopping the schedule.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Call before Start; jobs added later are not picked
// up until the next Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Info("Background job registered", "name", name, "interval", interval)
}

// Start launches one goroutine per registered job. Each job runs once
// immediately so alerts for already-open shifts do not wait a full interval
// after a restart.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Background scheduler started", "job_count", len(s.jobs))
}

// Stop cancels the scheduler context and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	slog.Info("Stopping background scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Background scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Background job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	slog.Debug("Background job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Background job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Background job completed", "name", job.Name, "duration", time.Since(start))
	}
}
