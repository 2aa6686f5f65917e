package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingBaseURL  = errors.New("GUARDIAN_BASE_URL is required")
	ErrInvalidTimeout  = errors.New("GUARDIAN_TIMEOUT_SEC must be positive")
	ErrInvalidBackend  = errors.New("QUEUE_BACKEND must be sqs or redis")
	ErrMissingRedisURL = errors.New("REDIS_URL is required for the redis backend")
)

const (
	BackendSQS   = "sqs"
	BackendRedis = "redis"
)

type Config struct {
	Guardian GuardianConfig
	AWS      AWSConfig
	Queue    QueueConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

type GuardianConfig struct {
	APIKey string
	// если задано, ключ берется из Secrets Manager при каждом запуске
	APIKeySecretName string
	BaseURL          string
	Timeout          time.Duration
}

type AWSConfig struct {
	Region      string
	EndpointURL string
}

type QueueConfig struct {
	Backend  string
	Name     string
	RedisURL string
}

type MetricsConfig struct {
	PushgatewayURL string
}

type LogConfig struct {
	Level  string
	Format string
}

// Option - переопределение после чтения env, до Validate (флаги CLI)
type Option func(*Config)

// WithQueueBackend - пустое значение не трогает то, что пришло из env.
func WithQueueBackend(backend string) Option {
	return func(c *Config) {
		if backend != "" {
			c.Queue.Backend = strings.ToLower(backend)
		}
	}
}

func WithLogLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.Log.Level = level
		}
	}
}

func Load(opts ...Option) (*Config, error) {
	cfg := &Config{
		Guardian: GuardianConfig{
			APIKey:           getEnvOrDefault("GUARDIAN_API_KEY", "test"),
			APIKeySecretName: getEnvOrDefault("GUARDIAN_API_KEY_SECRET_NAME", ""),
			BaseURL:          getEnvOrDefault("GUARDIAN_BASE_URL", "https://content.guardianapis.com"),
			Timeout:          time.Duration(getEnvIntOrDefault("GUARDIAN_TIMEOUT_SEC", 5)) * time.Second,
		},
		AWS: AWSConfig{
			Region:      getEnvOrDefault("AWS_REGION", "eu-west-2"),
			EndpointURL: getEnvOrDefault("AWS_ENDPOINT_URL", ""),
		},
		Queue: QueueConfig{
			Backend:  strings.ToLower(getEnvOrDefault("QUEUE_BACKEND", BackendSQS)),
			Name:     getEnvOrDefault("QUEUE_NAME", "guardian_content"),
			RedisURL: getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: getEnvOrDefault("PUSHGATEWAY_URL", ""),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Guardian.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Guardian.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	switch c.Queue.Backend {
	case BackendSQS:
	case BackendRedis:
		if c.Queue.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return ErrInvalidBackend
	}
	return nil
}

// getEnvOrDefault - KEY_FILE (docker/k8s secrets) важнее самого KEY
func getEnvOrDefault(key, defaultValue string) string {
	if path := os.Getenv(key + "_FILE"); path != "" {
		if content, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
