// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
	"gocloud.dev/pubsub"

	"github.com/allisson/bookflow/internal/broker"
	"github.com/allisson/bookflow/internal/config"
	"github.com/allisson/bookflow/internal/dedupe"
	"github.com/allisson/bookflow/internal/events/consumer"
	"github.com/allisson/bookflow/internal/events/publisher"
	"github.com/allisson/bookflow/internal/http"
	"github.com/allisson/bookflow/internal/metrics"
	"github.com/allisson/bookflow/internal/notifications"
	workflowHTTP "github.com/allisson/bookflow/internal/workflow/http"
	workflowUsecase "github.com/allisson/bookflow/internal/workflow/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	messageBroker   broker.Broker
	topic           *pubsub.Topic
	deadLetterTopic *pubsub.Topic
	subscription    *pubsub.Subscription
	dlqSubscription *pubsub.Subscription
	redisClient     redis.UniversalClient
	dedupeStore     dedupe.Store

	// Workflow components
	bookStore       workflowUsecase.BookStore
	eventPublisher  publisher.EventPublisher
	workflowUseCase workflowUsecase.WorkflowUseCase
	bookHandler     *workflowHTTP.BookHandler

	// Notification components
	notifier             notifications.Notifier
	recipientResolver    *notifications.Resolver
	dispatcher           *consumer.Dispatcher
	notificationConsumer *consumer.Consumer

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	brokerInit          sync.Once
	topicInit           sync.Once
	dlqTopicInit        sync.Once
	subscriptionInit    sync.Once
	dlqSubscriptionInit sync.Once
	dedupeStoreInit     sync.Once
	bookStoreInit       sync.Once
	publisherInit       sync.Once
	workflowUseCaseInit sync.Once
	bookHandlerInit     sync.Once
	notifierInit        sync.Once
	resolverInit        sync.Once
	dispatcherInit      sync.Once
	consumerInit        sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the otel metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Broker returns the message broker instance.
func (c *Container) Broker() broker.Broker {
	c.brokerInit.Do(func() {
		c.messageBroker = broker.NewBroker()
	})
	return c.messageBroker
}

// Topic returns the status-change topic.
func (c *Container) Topic(ctx context.Context) (*pubsub.Topic, error) {
	c.topicInit.Do(func() {
		topic, err := c.Broker().OpenTopic(ctx, c.config.BrokerTopicURL)
		if err != nil {
			c.initErrors["topic"] = fmt.Errorf("failed to open topic: %w", err)
			return
		}
		c.topic = topic
	})
	if storedErr, exists := c.initErrors["topic"]; exists {
		return nil, storedErr
	}
	return c.topic, nil
}

// DeadLetterTopic returns the dead-letter topic.
func (c *Container) DeadLetterTopic(ctx context.Context) (*pubsub.Topic, error) {
	c.dlqTopicInit.Do(func() {
		topic, err := c.Broker().OpenTopic(ctx, c.config.BrokerDeadLetterTopicURL)
		if err != nil {
			c.initErrors["dlqTopic"] = fmt.Errorf("failed to open dead-letter topic: %w", err)
			return
		}
		c.deadLetterTopic = topic
	})
	if storedErr, exists := c.initErrors["dlqTopic"]; exists {
		return nil, storedErr
	}
	return c.deadLetterTopic, nil
}

// Subscription returns the status-change subscription the worker consumes.
func (c *Container) Subscription(ctx context.Context) (*pubsub.Subscription, error) {
	c.subscriptionInit.Do(func() {
		subscription, err := c.Broker().OpenSubscription(ctx, c.config.BrokerSubscriptionURL)
		if err != nil {
			c.initErrors["subscription"] = fmt.Errorf("failed to open subscription: %w", err)
			return
		}
		c.subscription = subscription
	})
	if storedErr, exists := c.initErrors["subscription"]; exists {
		return nil, storedErr
	}
	return c.subscription, nil
}

// DeadLetterSubscription returns the dead-letter subscription for replay.
func (c *Container) DeadLetterSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	c.dlqSubscriptionInit.Do(func() {
		subscription, err := c.Broker().OpenSubscription(ctx, c.config.BrokerDeadLetterSubscriptionURL)
		if err != nil {
			c.initErrors["dlqSubscription"] = fmt.Errorf("failed to open dead-letter subscription: %w", err)
			return
		}
		c.dlqSubscription = subscription
	})
	if storedErr, exists := c.initErrors["dlqSubscription"]; exists {
		return nil, storedErr
	}
	return c.dlqSubscription, nil
}

// DedupeStore returns the dedupe/attempts store. A redis-backed store is used
// when REDIS_URL is configured; otherwise an in-memory store serves local runs
// and tests.
func (c *Container) DedupeStore() (dedupe.Store, error) {
	c.dedupeStoreInit.Do(func() {
		if c.config.RedisURL == "" {
			c.dedupeStore = dedupe.NewMemoryStore()
			return
		}
		options, err := redis.ParseURL(c.config.RedisURL)
		if err != nil {
			c.initErrors["dedupeStore"] = fmt.Errorf("failed to parse redis url: %w", err)
			return
		}
		c.redisClient = redis.NewClient(options)
		c.dedupeStore = dedupe.NewRedisStore(c.redisClient)
	})
	if storedErr, exists := c.initErrors["dedupeStore"]; exists {
		return nil, storedErr
	}
	return c.dedupeStore, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.topic != nil {
		if err := c.topic.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("topic shutdown: %w", err))
		}
	}

	if c.deadLetterTopic != nil {
		if err := c.deadLetterTopic.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("dead-letter topic shutdown: %w", err))
		}
	}

	if c.subscription != nil {
		if err := c.subscription.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("subscription shutdown: %w", err))
		}
	}

	if c.dlqSubscription != nil {
		if err := c.dlqSubscription.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("dead-letter subscription shutdown: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
