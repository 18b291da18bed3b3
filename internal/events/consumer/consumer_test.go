package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"

	"github.com/allisson/bookflow/internal/metrics"
)

// One malformed message in a batch dead-letters without affecting the valid
// messages around it.
func TestConsumer_Run_BatchIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := mempubsub.NewTopic()
	defer func() { _ = topic.Shutdown(context.Background()) }()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer func() { _ = sub.Shutdown(context.Background()) }()
	dlqTopic := mempubsub.NewTopic()
	defer func() { _ = dlqTopic.Shutdown(context.Background()) }()
	dlqSub := mempubsub.NewSubscription(dlqTopic, time.Minute)
	defer func() { _ = dlqSub.Shutdown(context.Background()) }()

	notifier := &recordingNotifier{}
	// Attempt ceiling of one so the malformed message dead-letters on its
	// first delivery instead of cycling through redeliveries.
	dispatcher := testDispatcher(notifier, 1)
	c := NewConsumer(sub, dlqTopic, dispatcher, 4, metrics.NewNoOpBusinessMetrics(), testLogger())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	malformed := []byte("not even json")
	require.NoError(t, topic.Send(ctx, &pubsub.Message{Body: submittedEventBody(t)}))
	require.NoError(t, topic.Send(ctx, &pubsub.Message{Body: malformed}))
	require.NoError(t, topic.Send(ctx, &pubsub.Message{Body: submittedEventBody(t)}))

	dlqCtx, dlqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dlqCancel()
	msg, err := dlqSub.Receive(dlqCtx)
	require.NoError(t, err)
	msg.Ack()

	var entry DeadLetterEntry
	require.NoError(t, json.Unmarshal(msg.Body, &entry))
	assert.Equal(t, malformed, entry.Payload)
	assert.Equal(t, 1, entry.Attempts)
	assert.NotEmpty(t, entry.Reasons)
	assert.False(t, entry.FailedAt.IsZero())

	require.Eventually(t, func() bool {
		return notifier.callCount() == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_Run_DuplicateDeliveryNotifiesOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := mempubsub.NewTopic()
	defer func() { _ = topic.Shutdown(context.Background()) }()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer func() { _ = sub.Shutdown(context.Background()) }()
	dlqTopic := mempubsub.NewTopic()
	defer func() { _ = dlqTopic.Shutdown(context.Background()) }()

	notifier := &recordingNotifier{}
	dispatcher := testDispatcher(notifier, 3)
	c := NewConsumer(sub, dlqTopic, dispatcher, 2, metrics.NewNoOpBusinessMetrics(), testLogger())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	body := submittedEventBody(t)
	require.NoError(t, topic.Send(ctx, &pubsub.Message{Body: body}))
	require.NoError(t, topic.Send(ctx, &pubsub.Message{Body: body}))

	require.Eventually(t, func() bool {
		return notifier.callCount() >= 1
	}, 5*time.Second, 10*time.Millisecond)

	// Give the duplicate time to be suppressed rather than delivered.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, notifier.callCount())

	cancel()
	require.NoError(t, <-done)
}

func TestReplayDeadLetters(t *testing.T) {
	ctx := context.Background()

	topic := mempubsub.NewTopic()
	defer func() { _ = topic.Shutdown(ctx) }()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer func() { _ = sub.Shutdown(ctx) }()
	dlqTopic := mempubsub.NewTopic()
	defer func() { _ = dlqTopic.Shutdown(ctx) }()
	dlqSub := mempubsub.NewSubscription(dlqTopic, time.Minute)
	defer func() { _ = dlqSub.Shutdown(ctx) }()

	original := submittedEventBody(t)
	entry := DeadLetterEntry{
		EventID:  "0198f646-54f2-7bc0-a11b-c3a0c64f30c7",
		Payload:  original,
		Reasons:  []string{"notify book_submitted: kaboom"},
		Attempts: 3,
		FailedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, dlqTopic.Send(ctx, &pubsub.Message{Body: payload}))

	replayCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	replayed, err := ReplayDeadLetters(replayCtx, dlqSub, topic, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	recvCtx, recvCancel := context.WithTimeout(ctx, 5*time.Second)
	defer recvCancel()
	msg, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	msg.Ack()

	assert.Equal(t, original, msg.Body)
	assert.Equal(t, "true", msg.Metadata["replayed"])
	assert.Equal(t, entry.EventID, msg.Metadata["eventId"])
}
