package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/trendcast/internal/config"
)

func TestMemoryQueue_PublishSubscribe(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	received := make(chan []byte, 3)
	require.NoError(t, q.Subscribe("a", func(data []byte) error {
		received <- data
		return nil
	}))

	payload := []byte("hello")
	require.NoError(t, q.Publish(context.Background(), "a", payload))
	payload[0] = 'j'

	select {
	case got := <-received:
		assert.Equal(t, "hello", string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemoryQueue_PendingUntilSubscribed(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, "a", []byte("1")))
	require.NoError(t, q.Publish(ctx, "a", []byte("2")))
	assert.Equal(t, 2, q.Pending("a"))
	assert.Equal(t, 0, q.Pending("b"))
}

func TestMemoryQueue_SubscribeTwice(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	noop := func([]byte) error { return nil }
	require.NoError(t, q.Subscribe("a", noop))
	assert.Error(t, q.Subscribe("a", noop))

	require.NoError(t, q.Unsubscribe("a"))
	assert.Error(t, q.Unsubscribe("a"))
	require.NoError(t, q.Subscribe("a", noop))
}

func TestMemoryQueue_Full(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	ctx := context.Background()
	for i := 0; i < memoryQueueCapacity; i++ {
		require.NoError(t, q.Publish(ctx, "a", []byte{1}))
	}
	assert.Error(t, q.Publish(ctx, "a", []byte{1}))
}

func TestMemoryQueue_Close(t *testing.T) {
	q := newMemoryQueue()
	require.NoError(t, q.Subscribe("a", func([]byte) error { return nil }))
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.Error(t, q.Publish(context.Background(), "a", nil))
	assert.Error(t, q.Subscribe("b", func([]byte) error { return nil }))
}

func TestModelTrainedEvent_RoundTrip(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	var mu sync.Mutex
	var got []ModelTrainedEvent
	done := make(chan struct{}, 1)
	require.NoError(t, SubscribeModelTrained(q, func(ev ModelTrainedEvent) error {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}))

	// garbage is dropped without reaching the handler
	require.NoError(t, q.Publish(context.Background(), SubjectModelTrained, []byte("{")))

	rmse := 1.25
	sent := ModelTrainedEvent{
		RunID:     "run-1",
		Indicator: "x",
		Handle:    "output/model.json",
		Slope:     2,
		Intercept: -3990,
		RMSE:      &rmse,
		TrainedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, PublishModelTrained(context.Background(), q, sent))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, sent.RunID, got[0].RunID)
	assert.Equal(t, sent.Slope, got[0].Slope)
	require.NotNil(t, got[0].RMSE)
	assert.Equal(t, 1.25, *got[0].RMSE)
	assert.True(t, sent.TrainedAt.Equal(got[0].TrainedAt))
}

func TestNewQueue(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{})
	require.NoError(t, err)
	_, ok := q.(*MemoryQueue)
	assert.True(t, ok, "memory is the default")
	_ = q.Close()

	q, err = NewQueue(config.QueueConfig{Type: "MEMORY"})
	require.NoError(t, err)
	_ = q.Close()

	_, err = NewQueue(config.QueueConfig{Type: "rabbitmq"})
	assert.Error(t, err)

	_, err = NewQueue(config.QueueConfig{Type: "kafka"})
	assert.Error(t, err, "kafka without brokers")
}
