package scheduler

import "errors"

// Submit errors. Callers such as the cron trigger log them and try again on
// the next tick.
var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: queue full")
	ErrJobInFlight         = errors.New("scheduler: a job of this kind is already queued or running")
)

var (
	// ErrUnknownJob is returned by the job runner for a kind it has no handler for
	ErrUnknownJob = errors.New("scheduler: unknown job kind")
	// ErrInvalidClock rejects a time of day that is not HH:MM
	ErrInvalidClock = errors.New("scheduler: time of day must be HH:MM")
)
