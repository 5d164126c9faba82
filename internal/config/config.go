package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535

	// DefaultMaxAttempts is the upload retry policy: three attempts in total
	DefaultMaxAttempts = 3
	// DefaultRetryBaseDelay is multiplied by the attempt number to get the retry delay
	DefaultRetryBaseDelay = 60 * time.Second
	// DefaultCallbackTimeout bounds a single webhook delivery
	DefaultCallbackTimeout = 10 * time.Second
	// DefaultTokenTTL is the lifetime of issued access tokens
	DefaultTokenTTL = 30 * time.Minute
)

// Environment variables that override secrets from the config file
const (
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvJWTSecret        = "JWT_SECRET_KEY"
	EnvRabbitMQPassword = "RABBITMQ_PASSWORD"
	EnvDBPassword       = "DB_PASSWORD"
	EnvLogLevel         = "LOG_LEVEL"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Logging  LoggingConfig  `yaml:"logging"`
	App      AppConfig      `yaml:"app"`
	Worker   WorkerConfig   `yaml:"worker"`
	Retry    RetryConfig    `yaml:"retry"`
	Auth     AuthConfig     `yaml:"auth"`
	Caption  CaptionConfig  `yaml:"caption"`
	Callback CallbackConfig `yaml:"callback"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration. The pool is only
// opened when Enabled is set.
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange/queue configuration
type RabbitMQConfig struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Queue      QueueConfig      `yaml:"queue"`
	DeadLetter DeadLetterConfig `yaml:"dead_letter"`
	RoutingKey string           `yaml:"routing_key"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
	Consumer   ConsumerConfig   `yaml:"consumer"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// QueueConfig holds RabbitMQ queue configuration
type QueueConfig struct {
	Name       string `yaml:"name"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`
}

// DeadLetterConfig names where terminally failed jobs end up
type DeadLetterConfig struct {
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// ConsumerConfig holds RabbitMQ consumer settings
type ConsumerConfig struct {
	PrefetchCount int  `yaml:"prefetch_count"`
	Exclusive     bool `yaml:"exclusive"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// WorkerConfig holds worker service configuration
type WorkerConfig struct {
	Concurrency          int           `yaml:"concurrency"`
	JobTimeout           time.Duration `yaml:"job_timeout"`
	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout"`
	QueueMetricsInterval time.Duration `yaml:"queue_metrics_interval"`
}

// RetryConfig holds the upload task retry policy
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// AuthConfig holds bearer token settings and the accounts allowed to log in
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Users     []UserConfig  `yaml:"users"`
}

// UserConfig is a login account with a bcrypt password hash
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// CaptionConfig holds the generative caption provider settings. An empty
// OpenAIAPIKey selects the deterministic fallback.
type CaptionConfig struct {
	OpenAIAPIKey   string        `yaml:"openai_api_key"`
	BaseURL        string        `yaml:"base_url"`
	PrimaryModel   string        `yaml:"primary_model"`
	SecondaryModel string        `yaml:"secondary_model"`
	MaxTokens      int           `yaml:"max_tokens"`
	Temperature    float32       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// CallbackConfig holds webhook delivery settings
type CallbackConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig holds the Prometheus exporter settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Load reads and parses the configuration file, then applies defaults and
// environment overrides
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	config.ApplyEnv(os.LookupEnv)

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if c.Callback.Timeout == 0 {
		c.Callback.Timeout = DefaultCallbackTimeout
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	if c.Caption.PrimaryModel == "" {
		c.Caption.PrimaryModel = "gpt-4"
	}
	if c.Caption.SecondaryModel == "" {
		c.Caption.SecondaryModel = "gpt-3.5-turbo"
	}
	if c.Caption.MaxTokens == 0 {
		c.Caption.MaxTokens = 300
	}
	if c.Caption.Temperature == 0 {
		c.Caption.Temperature = 0.7
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.RabbitMQ.Consumer.PrefetchCount == 0 {
		c.RabbitMQ.Consumer.PrefetchCount = 1
	}
}

// ApplyEnv overrides secrets with values found through lookup (os.LookupEnv
// in production)
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvOpenAIAPIKey); ok {
		c.Caption.OpenAIAPIKey = v
	}
	if v, ok := lookup(EnvJWTSecret); ok && v != "" {
		c.Auth.JWTSecret = v
	}
	if v, ok := lookup(EnvRabbitMQPassword); ok && v != "" {
		c.RabbitMQ.Password = v
	}
	if v, ok := lookup(EnvDBPassword); ok && v != "" {
		c.Database.Password = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
}

// ValidateAPIConfig checks the settings the API service depends on
func (c *Config) ValidateAPIConfig() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateRabbitMQ(); err != nil {
		return err
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}

	if len(c.Auth.Users) == 0 {
		return fmt.Errorf("at least one auth user is required")
	}

	for _, u := range c.Auth.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("auth users need both username and password_hash")
		}
	}

	return c.validateCaption()
}

// ValidateWorkerConfig checks the settings the worker service depends on
func (c *Config) ValidateWorkerConfig() error {
	if err := c.validateRabbitMQ(); err != nil {
		return err
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be greater than 0")
	}

	if c.Worker.JobTimeout <= 0 {
		return fmt.Errorf("worker job_timeout must be greater than 0")
	}

	if c.Worker.ShutdownTimeout <= 0 {
		return fmt.Errorf("worker shutdown_timeout must be greater than 0")
	}

	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max_attempts must be greater than 0")
	}

	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry base_delay must be greater than 0")
	}

	if c.Metrics.Enabled && (c.Metrics.Port < MinPort || c.Metrics.Port > MaxPort) {
		return fmt.Errorf("invalid metrics port: %d (must be between %d and %d)", c.Metrics.Port, MinPort, MaxPort)
	}

	return c.validateCaption()
}

func (c *Config) validateDatabase() error {
	if !c.Database.Enabled {
		return nil
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	return nil
}

func (c *Config) validateRabbitMQ() error {
	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq host is required")
	}

	if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
		return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
	}

	if c.RabbitMQ.Exchange.Name == "" {
		return fmt.Errorf("rabbitmq exchange name is required")
	}

	if c.RabbitMQ.Queue.Name == "" {
		return fmt.Errorf("rabbitmq queue name is required")
	}

	if (c.RabbitMQ.DeadLetter.Exchange == "") != (c.RabbitMQ.DeadLetter.Queue == "") {
		return fmt.Errorf("rabbitmq dead_letter needs both exchange and queue")
	}

	return nil
}

func (c *Config) validateCaption() error {
	if c.Caption.MaxTokens < 0 {
		return fmt.Errorf("caption max_tokens must not be negative")
	}

	if c.Caption.Temperature < 0 || c.Caption.Temperature > 2 {
		return fmt.Errorf("caption temperature must be between 0 and 2")
	}

	return nil
}
