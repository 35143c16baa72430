package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Submitter queues jobs
type Submitter interface {
	Submit(kind JobKind) error
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// CheckInterval is how often the loop wakes up; the stale order sweep
	// runs on every tick
	CheckInterval time.Duration

	// DigestHour and DigestMinute are the local time of the daily digest
	DigestHour   int
	DigestMinute int

	Location *time.Location
}

// CronTriggerConfigFrom builds the trigger config from application config
func CronTriggerConfigFrom(cfg config.SchedulerConfig, loc *time.Location) (CronTriggerConfig, error) {
	hour, minute, err := ParseClock(cfg.LowStockDigestAt)
	if err != nil {
		return CronTriggerConfig{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return CronTriggerConfig{
		CheckInterval: cfg.CheckInterval,
		DigestHour:    hour,
		DigestMinute:  minute,
		Location:      loc,
	}, nil
}

// ParseClock parses "HH:MM"
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour(), t.Minute(), nil
}

// CronTrigger submits the periodic jobs: the stale order sweep on every
// tick and the low stock digest once a day at the configured time
type CronTrigger struct {
	config    CronTriggerConfig
	submitter Submitter
	logger    *zap.Logger
	now       func() time.Time

	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
	lastDigestDay string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(cfg CronTriggerConfig, submitter Submitter, logger *zap.Logger) *CronTrigger {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config:    cfg,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the trigger loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Duration("check_interval", c.config.CheckInterval),
		zap.String("digest_at", fmt.Sprintf("%02d:%02d", c.config.DigestHour, c.config.DigestMinute)),
		zap.String("location", c.config.Location.String()),
	)
	return nil
}

// Stop stops the trigger loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick submits whatever is due now
func (c *CronTrigger) Tick() {
	c.submit(JobCancelStaleOrders)

	if c.digestDue() {
		c.submit(JobLowStockDigest)
	}
}

// digestDue reports whether the digest has not run today and its time has
// passed
func (c *CronTrigger) digestDue() bool {
	now := c.now().In(c.config.Location)
	day := now.Format("2006-01-02")
	at := time.Date(now.Year(), now.Month(), now.Day(), c.config.DigestHour, c.config.DigestMinute, 0, 0, c.config.Location)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastDigestDay == day || now.Before(at) {
		return false
	}
	c.lastDigestDay = day
	return true
}

func (c *CronTrigger) submit(kind JobKind) {
	err := c.submitter.Submit(kind)
	switch {
	case err == nil:
	case errors.Is(err, ErrJobInFlight):
		c.logger.Debug("Job still running, skipping tick", zap.String("kind", string(kind)))
	default:
		c.logger.Warn("Failed to submit job", zap.String("kind", string(kind)), zap.Error(err))
	}
}
