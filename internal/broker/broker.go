// Package broker opens topics and subscriptions on the configured message
// broker using gocloud.dev/pubsub. URLs select the provider: awssnssqs:// for
// the SNS topic / SQS queue pair in production and mem:// for tests and local
// runs. The topic fans a published message out to every subscribed queue; the
// queue delivers at-least-once with visibility-timeout semantics.
package broker

import (
	"context"
	"fmt"

	"gocloud.dev/pubsub"

	// Register broker provider drivers
	_ "gocloud.dev/pubsub/awssnssqs"
	_ "gocloud.dev/pubsub/mempubsub"
)

// Broker opens topics and subscriptions for the configured provider.
type Broker interface {
	// OpenTopic opens a broadcast topic for publishing.
	// Returns an error if the topic URL is invalid or the provider is unreachable.
	OpenTopic(ctx context.Context, topicURL string) (*pubsub.Topic, error)

	// OpenSubscription opens a durable queue subscription for receiving.
	// Returns an error if the subscription URL is invalid or the provider is unreachable.
	OpenSubscription(ctx context.Context, subscriptionURL string) (*pubsub.Subscription, error)
}

// broker implements Broker using gocloud.dev/pubsub.
type broker struct{}

// NewBroker creates a new broker instance.
func NewBroker() Broker {
	return &broker{}
}

// OpenTopic opens a topic using the provider selected by the URL scheme.
// Supports: awssnssqs://, mem://
func (b *broker) OpenTopic(ctx context.Context, topicURL string) (*pubsub.Topic, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic: %w", err)
	}
	return topic, nil
}

// OpenSubscription opens a queue subscription using the provider selected by
// the URL scheme. Supports: awssnssqs://, mem://
func (b *broker) OpenSubscription(ctx context.Context, subscriptionURL string) (*pubsub.Subscription, error) {
	subscription, err := pubsub.OpenSubscription(ctx, subscriptionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscription: %w", err)
	}
	return subscription, nil
}
