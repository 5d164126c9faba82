package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/socialtrend-automation/internal/callback"
	"github.com/cuongbtq/socialtrend-automation/internal/caption"
	"github.com/cuongbtq/socialtrend-automation/internal/config"
	"github.com/cuongbtq/socialtrend-automation/internal/metrics"
	"github.com/cuongbtq/socialtrend-automation/internal/platform"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/worker"
	"github.com/cuongbtq/socialtrend-automation/shared/logger"
	"github.com/cuongbtq/socialtrend-automation/shared/rabbitmq"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	appLogger.Info("RabbitMQ connection established")

	m := metrics.New()
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = startMetricsServer(&cfg.Metrics, m, appLogger.Logger)
	}

	policy := worker.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
	}

	uploads := service.NewUploadService(appLogger.Logger, platform.DefaultPublishers()...)
	notifier := callback.NewNotifier(cfg.Callback.Timeout, appLogger.Logger)
	composer := initComposer(&cfg.Caption, appLogger.Logger)

	executor := worker.NewExecutor(worker.NewQueueScheduler(rabbitClient), m, appLogger.Logger,
		worker.UploadTask(uploads, notifier, policy, appLogger.Logger),
		worker.AIProcessTask(composer, appLogger.Logger),
	)

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:               appLogger.Logger,
		Broker:               rabbitClient,
		Executor:             executor,
		Metrics:              m,
		WorkerID:             "worker-" + uuid.NewString()[:8],
		Concurrency:          cfg.Worker.Concurrency,
		PrefetchCount:        cfg.RabbitMQ.Consumer.PrefetchCount,
		JobTimeout:           cfg.Worker.JobTimeout,
		QueueMetricsInterval: cfg.Worker.QueueMetricsInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully",
		slog.Int("max_attempts", policy.MaxAttempts),
		slog.Duration("retry_base_delay", policy.BaseDelay),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("Metrics server shutdown error",
				slog.Any("error", err),
			)
		}
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
		Service:      cfg.App.Name,
	})
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		DeadLetterExchange: cfg.DeadLetter.Exchange,
		DeadLetterQueue:    cfg.DeadLetter.Queue,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
		ConsumerExclusive:  cfg.Consumer.Exclusive,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// initComposer picks the OpenAI provider when a key is configured and the
// template fallback otherwise
func initComposer(cfg *config.CaptionConfig, logger *slog.Logger) *caption.Composer {
	generator := caption.NewGenerator(caption.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
	})

	return caption.NewComposer(generator, caption.Models{
		Primary:   cfg.PrimaryModel,
		Secondary: cfg.SecondaryModel,
	}, logger)
}

// startMetricsServer exposes the Prometheus registry on its own port
func startMetricsServer(cfg *config.MetricsConfig, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed",
				slog.Any("error", err),
			)
		}
	}()

	logger.Info("Metrics server listening",
		slog.String("address", srv.Addr),
		slog.String("path", cfg.Path),
	)

	return srv
}
