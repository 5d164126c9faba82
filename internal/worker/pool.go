package worker

import (
	"fmt"
	"log/slog"

	"github.com/cuongbtq/socialtrend-automation/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool() {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(i)
	}
}

// workerLoop runs jobs until jobsChan is closed. Shutdown does not interrupt
// a job in progress.
func (w *Worker) workerLoop(workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for msg := range w.jobsChan {
		w.logger.Info("Worker received job",
			slog.String("worker_name", workerName),
			slog.String("job_id", msg.Job.ID.String()),
			slog.String("task", msg.Job.Task),
			slog.Uint64("delivery_tag", msg.DeliveryTag),
		)

		outcome, err := w.processJob(msg)
		w.settle(workerName, msg, outcome, err)
	}

	w.logger.Debug("Worker goroutine stopping - jobsChan closed",
		slog.String("worker_name", workerName),
	)
}

// settle acknowledges the delivery once the job reached a terminal state or
// its retry copy is queued. Terminal failures are rejected into the
// dead-letter queue.
func (w *Worker) settle(workerName string, msg *domain.JobMessage, outcome Outcome, err error) {
	jobID := msg.Job.ID.String()

	if err != nil {
		w.logger.Error("Job processing failed",
			slog.String("worker_name", workerName),
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		// requeueing would hand back the same attempt count, so rejected
		// jobs always go to the dead-letter queue
		w.nack(msg, false)
		return
	}

	switch outcome.State {
	case domain.StateSucceeded, domain.StateRetryWait:
		if ackErr := w.broker.Ack(msg.DeliveryTag); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("job_id", jobID),
				slog.String("error", ackErr.Error()),
			)
		}
	default:
		w.nack(msg, false)
	}
}

func (w *Worker) nack(msg *domain.JobMessage, requeue bool) {
	if err := w.broker.Nack(msg.DeliveryTag, requeue); err != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("job_id", msg.Job.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Info("Message NACKed",
		slog.String("job_id", msg.Job.ID.String()),
		slog.Bool("requeue", requeue),
	)
}
