package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind names a housekeeping task of the bakery
type JobKind string

const (
	// JobCancelStaleOrders cancels unpaid orders past their payment window
	JobCancelStaleOrders JobKind = "CANCEL_STALE_ORDERS"
	// JobLowStockDigest mails the morning list of products and ingredients to restock
	JobLowStockDigest JobKind = "LOW_STOCK_DIGEST"
)

// Job is one run of a task. Attempt counts from zero and grows with each retry.
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	Status      JobStatus
	Attempt     int
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
}

func NewJob(kind JobKind) *Job {
	return &Job{ID: uuid.New(), Kind: kind, Status: JobStatusPending}
}

// JobExecutor runs one attempt of a job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Config sizes the worker pool. A failed attempt is retried RetryAttempts
// times, RetryDelay apart.
type Config struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		JobTimeout:        5 * time.Minute,
		RetryAttempts:     2,
		RetryDelay:        time.Minute,
	}
}

// Scheduler runs submitted jobs on a small pool of workers. At most one job
// of each kind is queued or running at any time.
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger
	queue    chan *Job

	mu       sync.Mutex
	running  bool
	inFlight map[JobKind]bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) *Scheduler {
	config.MaxConcurrentJobs = max(config.MaxConcurrentJobs, 1)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger.Named("scheduler"),
		queue:    make(chan *Job, 16),
		inFlight: make(map[JobKind]bool),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	for i := range s.config.MaxConcurrentJobs {
		s.wg.Add(1)
		go s.work(ctx, i)
	}
	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout))
	return nil
}

// Stop cancels the running jobs and waits for the workers until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a job of kind unless one is already queued or running
func (s *Scheduler) Submit(kind JobKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.running:
		return ErrSchedulerNotRunning
	case s.inFlight[kind]:
		return ErrJobInFlight
	}

	job := NewJob(kind)
	select {
	case s.queue <- job:
		s.inFlight[kind] = true
		s.logger.Debug("Job queued", zap.String("kind", string(kind)), zap.String("job_id", job.ID.String()))
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) work(ctx context.Context, worker int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.run(ctx, job, worker)
			s.mu.Lock()
			delete(s.inFlight, job.Kind)
			s.mu.Unlock()
		}
	}
}

// run executes job, retrying on a constant delay until it succeeds, the
// retries run out or the scheduler stops
func (s *Scheduler) run(ctx context.Context, job *Job, worker int) {
	log := s.logger.With(
		zap.Int("worker", worker),
		zap.String("kind", string(job.Kind)),
		zap.String("job_id", job.ID.String()))

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.config.RetryDelay), uint64(max(s.config.RetryAttempts, 0))),
		ctx)

	job.StartedAt = time.Now()
	attempt := func() error {
		job.Status = JobStatusRunning
		jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
		err := s.executor.Execute(jobCtx, job)
		if errors.Is(err, ErrUnknownJob) {
			return backoff.Permanent(err)
		}
		return err
	}
	onRetry := func(err error, wait time.Duration) {
		log.Warn("Job attempt failed, retrying",
			zap.Int("attempt", job.Attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err))
		job.Attempt++
	}

	err := backoff.RetryNotify(attempt, policy, onRetry)
	job.CompletedAt = time.Now()
	if err != nil {
		job.Status, job.Error = JobStatusFailed, err.Error()
		log.Error("Job failed", zap.Int("attempts", job.Attempt+1), zap.Error(err))
		return
	}
	job.Status = JobStatusSuccess
	log.Info("Job completed", zap.Duration("took", job.CompletedAt.Sub(job.StartedAt)))
}
