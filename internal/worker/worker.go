package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/socialtrend-automation/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultJobTimeout bounds an attempt when no timeout is configured
const DefaultJobTimeout = 2 * time.Minute

// Broker is the part of the RabbitMQ client the worker depends on
type Broker interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Ack(deliveryTag uint64) error
	Nack(deliveryTag uint64, requeue bool) error
	QueueLength() (int, error)
	QueueName() string
}

// QueueMetrics records queue depth
type QueueMetrics interface {
	SetQueueLength(queueName string, length int)
}

// Config holds worker configuration
type Config struct {
	Logger               *slog.Logger
	Broker               Broker
	Executor             *Executor
	Metrics              QueueMetrics
	WorkerID             string
	Concurrency          int
	PrefetchCount        int
	JobTimeout           time.Duration
	QueueMetricsInterval time.Duration
}

// Worker consumes jobs from the queue and runs them on a fixed pool of
// goroutines
type Worker struct {
	logger               *slog.Logger
	broker               Broker
	executor             *Executor
	metrics              QueueMetrics
	workerID             string
	concurrency          int
	prefetchCount        int
	jobTimeout           time.Duration
	queueMetricsInterval time.Duration

	jobsChan chan *domain.JobMessage
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}

	jobTimeout := cfg.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}

	return &Worker{
		logger:               cfg.Logger,
		broker:               cfg.Broker,
		executor:             cfg.Executor,
		metrics:              cfg.Metrics,
		workerID:             cfg.WorkerID,
		concurrency:          cfg.Concurrency,
		prefetchCount:        prefetch,
		jobTimeout:           jobTimeout,
		queueMetricsInterval: cfg.QueueMetricsInterval,
		jobsChan:             make(chan *domain.JobMessage),
		stopChan:             make(chan struct{}),
	}
}

// Start consumes until ctx is canceled or the delivery channel closes. Jobs
// already handed to the pool keep running; call Stop to wait for them.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool()

	if w.metrics != nil && w.queueMetricsInterval > 0 {
		w.wg.Add(1)
		go w.monitorQueue(ctx)
	}

	w.startMessageDispatcher(ctx, deliveries)
	close(w.jobsChan)

	w.logger.Info("Worker stopped consuming",
		slog.String("worker_id", w.workerID),
	)

	return nil
}

// Stop waits for in-flight jobs to finish
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// monitorQueue refreshes the queue length gauge on an interval
func (w *Worker) monitorQueue(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.queueMetricsInterval)
	defer ticker.Stop()

	w.updateQueueMetrics()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.updateQueueMetrics()
		}
	}
}

func (w *Worker) updateQueueMetrics() {
	if w.metrics == nil {
		return
	}

	length, err := w.broker.QueueLength()
	if err != nil {
		w.logger.Warn("Failed to read queue length",
			slog.String("error", err.Error()),
		)
		return
	}

	w.metrics.SetQueueLength(w.broker.QueueName(), length)
}
