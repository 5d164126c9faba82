package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/socialtrend-automation/internal/metrics"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/cuongbtq/socialtrend-automation/internal/worker/domain"
)

// Policy bounds how often a task is attempted and how long to wait between
// attempts
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay is the wait after attemptsMade failed attempts: BaseDelay,
// 2*BaseDelay, ...
func (p Policy) Delay(attemptsMade int) time.Duration {
	return p.BaseDelay * time.Duration(attemptsMade)
}

// Handler performs one attempt of a task
type Handler func(ctx context.Context, job *tasks.Job) (any, error)

// ExhaustedHook runs once when a job fails for the last time
type ExhaustedHook func(ctx context.Context, job *tasks.Job, cause error)

// TaskSpec registers a task with the executor
type TaskSpec struct {
	Name        string
	Handler     Handler
	Policy      Policy
	OnExhausted ExhaustedHook
}

// RetryScheduler hands a job back to the queue after delay
type RetryScheduler interface {
	ScheduleRetry(ctx context.Context, job *tasks.Job, delay time.Duration) error
}

// TaskMetrics records attempt outcomes
type TaskMetrics interface {
	ObserveTask(taskName, status string, elapsed time.Duration)
}

// Outcome describes where one attempt left the job
type Outcome struct {
	State   domain.State
	Attempt int
	Result  any
	Err     error
	Delay   time.Duration
}

// Executor runs task attempts and decides between success, a delayed retry
// and terminal failure. It holds no per-job state, so one Executor serves
// every worker goroutine.
type Executor struct {
	tasks     map[string]TaskSpec
	scheduler RetryScheduler
	metrics   TaskMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewExecutor creates an Executor for the given tasks
func NewExecutor(scheduler RetryScheduler, taskMetrics TaskMetrics, logger *slog.Logger, specs ...TaskSpec) *Executor {
	e := &Executor{
		tasks:     make(map[string]TaskSpec, len(specs)),
		scheduler: scheduler,
		metrics:   taskMetrics,
		logger:    logger,
		now:       time.Now,
	}
	for _, spec := range specs {
		e.tasks[spec.Name] = spec
	}
	return e
}

// Execute performs one attempt of job. Task failures are reported through
// the Outcome; the error return is reserved for jobs the executor cannot
// handle (domain.ErrUnknownTask, domain.ErrMaxRetriesExceeded,
// domain.ErrInvalidTransition). A retry that cannot be scheduled ends the job
// as failed, so a job never runs more than its maximum attempts.
func (e *Executor) Execute(ctx context.Context, job *tasks.Job) (Outcome, error) {
	spec, ok := e.tasks[job.Task]
	if !ok {
		return Outcome{State: domain.StateFailed, Attempt: job.Attempt}, fmt.Errorf("%w: %s", domain.ErrUnknownTask, job.Task)
	}

	maxAttempts := spec.Policy.MaxAttempts
	if job.MaxAttempts > 0 {
		maxAttempts = job.MaxAttempts
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	if job.Attempt >= maxAttempts {
		e.logger.Warn("Job arrived with no attempts left",
			slog.String("job_id", job.ID.String()),
			slog.String("task", job.Task),
			slog.Int("attempt", job.Attempt),
			slog.Int("max_attempts", maxAttempts),
		)
		return Outcome{State: domain.StateFailed, Attempt: job.Attempt}, fmt.Errorf("%w: %d of %d", domain.ErrMaxRetriesExceeded, job.Attempt, maxAttempts)
	}

	lc := e.track(job)
	if lc.state == domain.StateRetryWait {
		if err := lc.moveTo(domain.StatePending); err != nil {
			return lc.outcome(job.Attempt), err
		}
	}

	current := job.NextAttempt()
	lc.job = current
	if err := lc.moveTo(domain.StateInFlight); err != nil {
		return lc.outcome(job.Attempt), err
	}

	start := e.now()
	result, err := spec.Handler(ctx, current)
	elapsed := e.now().Sub(start)

	if err == nil {
		e.metrics.ObserveTask(spec.Name, metrics.StatusSuccess, elapsed)
		if tErr := lc.moveTo(domain.StateSucceeded); tErr != nil {
			return lc.outcome(current.Attempt), tErr
		}
		e.logger.Info("Task succeeded",
			slog.String("job_id", current.ID.String()),
			slog.String("task", spec.Name),
			slog.Int("attempt", current.Attempt),
			slog.Duration("duration", elapsed),
		)
		out := lc.outcome(current.Attempt)
		out.Result = result
		return out, nil
	}

	e.metrics.ObserveTask(spec.Name, metrics.StatusFailed, elapsed)
	e.logger.Error("Task attempt failed",
		slog.String("job_id", current.ID.String()),
		slog.String("task", spec.Name),
		slog.Int("attempt", current.Attempt),
		slog.Int("max_attempts", maxAttempts),
		slog.Duration("duration", elapsed),
		slog.String("error", err.Error()),
	)

	if !isPermanent(err) && current.Attempt < maxAttempts {
		delay := spec.Policy.Delay(current.Attempt)
		schedErr := e.scheduler.ScheduleRetry(ctx, current, delay)
		if schedErr == nil {
			if tErr := lc.moveTo(domain.StateRetryWait); tErr != nil {
				return lc.outcome(current.Attempt), tErr
			}
			e.logger.Info("Task retry scheduled",
				slog.String("job_id", current.ID.String()),
				slog.String("task", spec.Name),
				slog.Int("attempt", current.Attempt),
				slog.Duration("retry_after", delay),
			)
			out := lc.outcome(current.Attempt)
			out.Err = err
			out.Delay = delay
			return out, nil
		}

		e.logger.Error("Failed to schedule retry",
			slog.String("job_id", current.ID.String()),
			slog.String("task", spec.Name),
			slog.Int("attempt", current.Attempt),
			slog.String("error", schedErr.Error()),
		)
		err = fmt.Errorf("%w; retry not scheduled: %w", err, schedErr)
	}

	if tErr := lc.moveTo(domain.StateFailed); tErr != nil {
		return lc.outcome(current.Attempt), tErr
	}
	e.logger.Error("Task failed permanently",
		slog.String("job_id", current.ID.String()),
		slog.String("task", spec.Name),
		slog.Int("attempts", current.Attempt),
		slog.String("error", err.Error()),
	)

	if spec.OnExhausted != nil {
		spec.OnExhausted(context.WithoutCancel(ctx), current, err)
	}

	out := lc.outcome(current.Attempt)
	out.Err = err
	return out, nil
}

// lifecycle holds the state of one job while the executor drives it. A job
// that already made attempts arrives from its delay queue in
// domain.StateRetryWait.
type lifecycle struct {
	job    *tasks.Job
	state  domain.State
	logger *slog.Logger
}

func (e *Executor) track(job *tasks.Job) *lifecycle {
	state := domain.StatePending
	if job.Attempt > 0 {
		state = domain.StateRetryWait
	}
	return &lifecycle{job: job, state: state, logger: e.logger}
}

// moveTo applies a transition, refusing any the state machine does not allow
func (l *lifecycle) moveTo(next domain.State) error {
	if !l.state.CanTransition(next) {
		l.logger.Error("Invalid job state transition",
			slog.String("job_id", l.job.ID.String()),
			slog.String("from", string(l.state)),
			slog.String("to", string(next)),
		)
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, l.state, next)
	}

	l.logger.Debug("Job state changed",
		slog.String("job_id", l.job.ID.String()),
		slog.String("from", string(l.state)),
		slog.String("to", string(next)),
	)
	l.state = next
	return nil
}

func (l *lifecycle) outcome(attempt int) Outcome {
	return Outcome{State: l.state, Attempt: attempt}
}

// isPermanent reports errors that another attempt cannot fix
func isPermanent(err error) bool {
	return service.IsValidation(err) ||
		errors.Is(err, tasks.ErrInvalidJob) ||
		errors.Is(err, domain.ErrInvalidPayload)
}
