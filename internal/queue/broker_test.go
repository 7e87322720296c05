package queue

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func isRedisAvailable() bool {
	opts, err := redis.ParseURL(redisURL())
	if err != nil {
		return false
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

func TestRedisConfig_Defaults(t *testing.T) {
	cfg := RedisConfig{URL: "redis://localhost:6379"}.withDefaults()
	assert.Equal(t, "trendcast", cfg.Stream)
	assert.Equal(t, "trendcast-group", cfg.Group)
	assert.NotEmpty(t, cfg.Consumer)
	assert.Equal(t, int64(1000), cfg.MaxLen)

	kept := RedisConfig{Stream: "s", Group: "g", Consumer: "c", MaxLen: 5}.withDefaults()
	assert.Equal(t, RedisConfig{Stream: "s", Group: "g", Consumer: "c", MaxLen: 5}, kept)
}

func TestRedisQueue_PublishSubscribe(t *testing.T) {
	if !isRedisAvailable() {
		t.Skip("Redis not available, skipping test")
	}

	stream := "trendcast-test-" + time.Now().Format("150405.000000")
	q, err := newRedisQueue(RedisConfig{URL: redisURL(), Stream: stream, Group: "test-group"})
	require.NoError(t, err)
	defer func() {
		q.client.Del(context.Background(), q.streamName(SubjectModelTrained))
		_ = q.Close()
	}()

	received := make(chan ModelTrainedEvent, 1)
	require.NoError(t, SubscribeModelTrained(q, func(ev ModelTrainedEvent) error {
		received <- ev
		return nil
	}))

	require.NoError(t, PublishModelTrained(context.Background(), q, ModelTrainedEvent{RunID: "redis-run"}))

	select {
	case ev := <-received:
		assert.Equal(t, "redis-run", ev.RunID)
	case <-time.After(10 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestNewRedisQueue_Unreachable(t *testing.T) {
	_, err := newRedisQueue(RedisConfig{URL: "redis://127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewKafkaQueue(t *testing.T) {
	_, err := newKafkaQueue(KafkaConfig{})
	assert.Error(t, err)

	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.Equal(t, "trendcast-viewer", q.config.GroupID)
	assert.Equal(t, 5*time.Second, q.config.WriteTimeout)
	assert.Equal(t, 3, q.config.MaxAttempts)
	assert.Error(t, q.Unsubscribe(SubjectModelTrained))

	assert.NoError(t, q.Close())
}

func kafkaBrokers() []string {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		return strings.Split(brokers, ",")
	}
	return []string{"localhost:9092"}
}

func isKafkaAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", kafkaBrokers()[0])
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func TestKafkaQueue_Subscribe(t *testing.T) {
	if !isKafkaAvailable() {
		t.Skip("Kafka not available, skipping test")
	}

	q, err := newKafkaQueue(KafkaConfig{Brokers: kafkaBrokers(), GroupID: "trendcast-test"})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	noop := func([]byte) error { return nil }
	require.NoError(t, q.Subscribe(SubjectModelTrained, noop))
	assert.Error(t, q.Subscribe(SubjectModelTrained, noop))
	require.NoError(t, q.Unsubscribe(SubjectModelTrained))
	assert.Error(t, q.Unsubscribe(SubjectModelTrained))
}

func TestTopicName(t *testing.T) {
	assert.Equal(t, "trendcast-model-trained", topicName(SubjectModelTrained))
}
