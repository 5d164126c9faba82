package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Publisher sends an encoded job to the work queue
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Enqueuer turns task invocations into queued jobs
type Enqueuer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewEnqueuer creates an Enqueuer
func NewEnqueuer(publisher Publisher, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{
		publisher: publisher,
		logger:    logger,
	}
}

// Enqueue publishes a new job for task and returns it
func (e *Enqueuer) Enqueue(ctx context.Context, task string, args any) (*Job, error) {
	job, err := NewJob(task, args, 0)
	if err != nil {
		return nil, err
	}

	body, err := job.Encode()
	if err != nil {
		return nil, err
	}

	if err := e.publisher.PublishWithRetry(ctx, body, ContentType); err != nil {
		e.logger.Error("Failed to enqueue job",
			slog.String("job_id", job.ID.String()),
			slog.String("task", task),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to enqueue %s: %w", task, err)
	}

	e.logger.Info("Job enqueued",
		slog.String("job_id", job.ID.String()),
		slog.String("task", task),
	)

	return job, nil
}
