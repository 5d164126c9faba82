package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/cuongbtq/socialtrend-automation/internal/worker/domain"
)

// DelayedPublisher publishes a message that becomes visible after a delay
type DelayedPublisher interface {
	PublishDelayed(ctx context.Context, body []byte, contentType string, delay time.Duration) error
}

// QueueScheduler schedules retries through broker-side delay queues
type QueueScheduler struct {
	publisher DelayedPublisher
}

// NewQueueScheduler creates a QueueScheduler
func NewQueueScheduler(publisher DelayedPublisher) *QueueScheduler {
	return &QueueScheduler{publisher: publisher}
}

// ScheduleRetry republishes job so it is consumed again after delay
func (s *QueueScheduler) ScheduleRetry(ctx context.Context, job *tasks.Job, delay time.Duration) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}
	return s.publisher.PublishDelayed(ctx, body, tasks.ContentType, delay)
}

// processJob runs one attempt under the job timeout. The job context is
// detached from worker shutdown so an attempt in progress can finish.
func (w *Worker) processJob(msg *domain.JobMessage) (Outcome, error) {
	jobCtx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	outcome, err := w.executor.Execute(jobCtx, msg.Job)

	w.logger.Debug("Job attempt finished",
		slog.String("job_id", msg.Job.ID.String()),
		slog.String("state", string(outcome.State)),
		slog.Int("attempt", outcome.Attempt),
	)

	w.updateQueueMetrics()

	return outcome, err
}
