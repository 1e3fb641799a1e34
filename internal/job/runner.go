package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"codeberg.org/snonux/lexicall/internal/api"
	"codeberg.org/snonux/lexicall/internal/notify"
)

const (
	// DefaultPollInterval is the fixed inter-poll delay: short enough to feel
	// responsive, long enough not to hammer the status endpoint.
	DefaultPollInterval = 1500 * time.Millisecond

	// DefaultDeadlineFloor is the minimum overall polling window. A caller's
	// short per-request timeout, chosen for transport-limit reasons, must not
	// prematurely abandon a job that is still legitimately running.
	DefaultDeadlineFloor = 15 * time.Minute
)

// Backend is the subset of the API client the runner needs
type Backend interface {
	SubmitJob(ctx context.Context, operation string, params any) (*api.JobStatus, error)
	GetJob(ctx context.Context, jobID string) (*api.JobStatus, error)
}

// Options configures one Run call
type Options struct {
	// Title and Message seed the progress notification.
	Title   string
	Message string

	// Model and Category tag the notification for display grouping.
	Model    string
	Category string

	// Timeout is the caller's overall timeout. The effective deadline is
	// max(Timeout, deadline floor), so a short value never truncates the
	// polling window.
	Timeout time.Duration

	// CancelAsError finalizes the notification as an error when the caller's
	// context is cancelled. By default cancellation leaves the notification
	// in progress and the caller decides presentation.
	CancelAsError bool

	// OnResult receives the job result on terminal success, before the
	// notification flips, so the UI reflects the finished artifact without
	// re-fetching.
	OnResult func(result json.RawMessage)
}

// Runner submits jobs and polls them to completion. Safe to use concurrently
// for different logical targets; it does not enforce per-target exclusivity.
type Runner struct {
	backend       Backend
	hub           *notify.Hub
	pollInterval  time.Duration
	deadlineFloor time.Duration
	logger        *slog.Logger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithPollInterval overrides the inter-poll delay
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithDeadlineFloor overrides the minimum overall polling window
func WithDeadlineFloor(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.deadlineFloor = d
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner on top of the given backend and notification hub
func NewRunner(backend Backend, hub *notify.Hub, opts ...RunnerOption) *Runner {
	r := &Runner{
		backend:       backend,
		hub:           hub,
		pollInterval:  DefaultPollInterval,
		deadlineFloor: DefaultDeadlineFloor,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Deadline computes the effective polling deadline for a caller timeout
func (r *Runner) Deadline(now time.Time, callerTimeout time.Duration) time.Time {
	window := r.deadlineFloor
	if callerTimeout > window {
		window = callerTimeout
	}
	return now.Add(window)
}

// Run submits the operation as a job and polls it until a terminal status,
// cancellation, or the deadline. Expected failures are converted into
// notification updates; the returned error mirrors the final notification so
// callers can set an exit code, with cancellation reported as ctx.Err().
func (r *Runner) Run(ctx context.Context, operation string, params any, opts Options) error {
	id := r.hub.Add(notify.Input{
		Title:    opts.Title,
		Message:  opts.Message,
		Status:   notify.StatusProgress,
		Model:    opts.Model,
		Category: opts.Category,
	})

	status, err := r.backend.SubmitJob(ctx, operation, params)
	if err != nil {
		if ctx.Err() != nil {
			return r.finishCancelled(id, opts, ctx.Err())
		}
		r.hub.Update(id, notify.Patch{
			Status:  notify.StatusError,
			Message: submitErrorMessage(operation, err),
		})
		return err
	}

	r.logger.Debug("job submitted", "operation", operation, "job_id", status.JobID, "status", status.Status)

	deadline := r.Deadline(time.Now(), opts.Timeout)
	observed := *status

	for !observed.Status.Terminal() {
		if time.Now().After(deadline) {
			r.hub.Update(id, notify.Patch{
				Status:  notify.StatusError,
				Message: opts.Title + " timed out — the job may still be running, check back later",
			})
			return ErrDeadlineExceeded
		}

		select {
		case <-ctx.Done():
			return r.finishCancelled(id, opts, ctx.Err())
		case <-time.After(r.pollInterval):
		}

		// Each status request individually respects the per-call timeout the
		// backend client enforces; only the loop's own clock runs long.
		next, err := r.backend.GetJob(ctx, observed.JobID)
		if err != nil {
			if ctx.Err() != nil {
				return r.finishCancelled(id, opts, ctx.Err())
			}
			// A single failed poll is not a job failure; the status endpoint
			// may flake while the job keeps running. Keep polling until the
			// deadline.
			r.logger.Debug("status poll failed", "job_id", observed.JobID, "error", err)
			continue
		}

		// Status is monotonic; never let an out-of-order response regress
		// what has already been observed.
		if next.Status.AtLeast(observed.Status) {
			observed = *next
		} else {
			r.logger.Debug("ignoring regressed job status",
				"job_id", observed.JobID, "observed", observed.Status, "reported", next.Status)
		}
	}

	if observed.Status == api.StatusFailed {
		message := observed.Error
		if message == "" {
			message = opts.Title + " failed — please retry"
		}
		r.hub.Update(id, notify.Patch{Status: notify.StatusError, Message: message})
		return &FailedError{JobID: observed.JobID, Message: observed.Error}
	}

	if opts.OnResult != nil {
		opts.OnResult(observed.Result)
	}
	r.hub.Update(id, notify.Patch{
		Status:  notify.StatusSuccess,
		Message: opts.Title + " finished",
	})
	return nil
}

// finishCancelled handles caller cancellation. Cancellation is not an error:
// unless the caller opted in, the notification is left untouched.
func (r *Runner) finishCancelled(id string, opts Options, cause error) error {
	if opts.CancelAsError {
		r.hub.Update(id, notify.Patch{
			Status:  notify.StatusError,
			Message: opts.Title + " was cancelled",
		})
	}
	return cause
}

func submitErrorMessage(operation string, err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if api.IsTimeout(err) {
		return "Could not reach the backend to start " + operation + " — timed out, please retry"
	}
	return "Failed to start " + operation + " — please retry"
}
