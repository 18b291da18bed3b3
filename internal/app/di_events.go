package app

import (
	"context"
	"fmt"

	"github.com/allisson/bookflow/internal/events/consumer"
	"github.com/allisson/bookflow/internal/notifications"
)

// Notifier returns the notification transport. The shipped implementation
// writes structured log lines; swap here when a real email transport lands.
func (c *Container) Notifier() notifications.Notifier {
	c.notifierInit.Do(func() {
		c.notifier = notifications.NewLogNotifier(c.Logger())
	})
	return c.notifier
}

// RecipientResolver returns the notification recipient resolver.
func (c *Container) RecipientResolver() (*notifications.Resolver, error) {
	c.resolverInit.Do(func() {
		resolverConfig := notifications.ResolverConfig{
			EditorialEmail:  c.config.EditorialEmail,
			PublishingEmail: c.config.PublishingEmail,
			AuthorsEmail:    c.config.AuthorsEmail,
		}
		if err := resolverConfig.Validate(); err != nil {
			c.initErrors["recipientResolver"] = fmt.Errorf("invalid notification addresses: %w", err)
			return
		}
		c.recipientResolver = notifications.NewResolver(resolverConfig)
	})
	if storedErr, exists := c.initErrors["recipientResolver"]; exists {
		return nil, storedErr
	}
	return c.recipientResolver, nil
}

// Dispatcher returns the delivery dispatcher.
func (c *Container) Dispatcher() (*consumer.Dispatcher, error) {
	c.dispatcherInit.Do(func() {
		store, err := c.DedupeStore()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get dedupe store for dispatcher: %w", err)
			return
		}
		resolver, err := c.RecipientResolver()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get recipient resolver for dispatcher: %w", err)
			return
		}

		c.dispatcher = consumer.NewDispatcher(
			store,
			resolver,
			c.Notifier(),
			c.config.ConsumerMaxAttempts,
			c.config.NotifyTimeout,
			c.config.DedupeTTL,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// NotificationConsumer returns the notification consumer instance.
func (c *Container) NotificationConsumer(ctx context.Context) (*consumer.Consumer, error) {
	c.consumerInit.Do(func() {
		subscription, err := c.Subscription(ctx)
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get subscription for consumer: %w", err)
			return
		}

		deadLetterTopic, err := c.DeadLetterTopic(ctx)
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get dead-letter topic for consumer: %w", err)
			return
		}

		dispatcher, err := c.Dispatcher()
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get dispatcher for consumer: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["consumer"] = fmt.Errorf("failed to get metrics for consumer: %w", err)
			return
		}

		c.notificationConsumer = consumer.NewConsumer(
			subscription,
			deadLetterTopic,
			dispatcher,
			c.config.ConsumerConcurrency,
			businessMetrics,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["consumer"]; exists {
		return nil, storedErr
	}
	return c.notificationConsumer, nil
}
