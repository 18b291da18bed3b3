// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout is the grace period for in-flight work on shutdown.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// BrokerTopicURL is the gocloud.dev/pubsub URL of the status-change topic
	// (e.g. "mem://status-changed" or "awssnssqs://arn:aws:sns:...").
	BrokerTopicURL string
	// BrokerSubscriptionURL is the pubsub URL the notification worker consumes.
	BrokerSubscriptionURL string
	// BrokerDeadLetterTopicURL is the pubsub URL of the dead-letter topic.
	BrokerDeadLetterTopicURL string
	// BrokerDeadLetterSubscriptionURL is the pubsub URL the dlq-replay command drains.
	BrokerDeadLetterSubscriptionURL string
	// PublishTimeout bounds a single event publish.
	PublishTimeout time.Duration

	// ConsumerConcurrency is the number of deliveries processed in parallel.
	ConsumerConcurrency int
	// ConsumerMaxAttempts is the delivery attempt ceiling before dead-lettering.
	ConsumerMaxAttempts int
	// NotifyTimeout bounds a single notification delivery.
	NotifyTimeout time.Duration

	// RedisURL is the redis connection URL for the dedupe store. Empty selects
	// the in-memory store.
	RedisURL string
	// DedupeTTL is how long processed event ids and attempt counters are kept.
	DedupeTTL time.Duration

	// EditorialEmail receives submitted-for-editing notifications.
	EditorialEmail string
	// PublishingEmail receives approved and published notifications.
	PublishingEmail string
	// AuthorsEmail receives rejected and returned-to-draft notifications.
	AuthorsEmail string

	// RateLimitEnabled indicates whether per-client rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 30, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Broker configuration
		BrokerTopicURL:                  env.GetString("BROKER_TOPIC_URL", "mem://book-status-changed"),
		BrokerSubscriptionURL:           env.GetString("BROKER_SUBSCRIPTION_URL", "mem://book-status-changed"),
		BrokerDeadLetterTopicURL:        env.GetString("BROKER_DLQ_TOPIC_URL", "mem://book-status-changed-dlq"),
		BrokerDeadLetterSubscriptionURL: env.GetString("BROKER_DLQ_SUBSCRIPTION_URL", "mem://book-status-changed-dlq"),
		PublishTimeout:                  env.GetDuration("PUBLISH_TIMEOUT_SECONDS", 5, time.Second),

		// Consumer configuration
		ConsumerConcurrency: env.GetInt("CONSUMER_CONCURRENCY", 4),
		ConsumerMaxAttempts: env.GetInt("CONSUMER_MAX_ATTEMPTS", 3),
		NotifyTimeout:       env.GetDuration("NOTIFY_TIMEOUT_SECONDS", 10, time.Second),

		// Dedupe store
		RedisURL:  env.GetString("REDIS_URL", ""),
		DedupeTTL: env.GetDuration("DEDUPE_TTL_HOURS", 24, time.Hour),

		// Notification recipients
		EditorialEmail:  env.GetString("EDITORIAL_EMAIL", "editorial@example.com"),
		PublishingEmail: env.GetString("PUBLISHING_EMAIL", "publishing@example.com"),
		AuthorsEmail:    env.GetString("AUTHORS_EMAIL", "authors@example.com"),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "bookflow"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
