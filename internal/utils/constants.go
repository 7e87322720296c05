package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the viewer
	ShutdownTimeout = 10 * time.Second
)

// Remote store and queue timeouts
const (
	// StoreOperationTimeout bounds a single model store round trip
	StoreOperationTimeout = 5 * time.Second

	// PublishTimeout bounds publishing a model event
	PublishTimeout = 5 * time.Second
)

// =============================================================================
// Year Bounds
// =============================================================================

const (
	// MinPredictYear is the earliest year the viewer accepts
	MinPredictYear = 1960

	// MaxPredictYear is the latest year the viewer accepts
	MaxPredictYear = 2100

	// ExampleYear is predicted when no year is supplied
	ExampleYear = 2030
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-process queue (default)
	QueueTypeMemory QueueType = "memory"
)

// =============================================================================
// Model Store Type Constants
// =============================================================================

// StoreType represents the backend holding the fitted model
type StoreType string

const (
	// StoreTypeFile keeps the model as a JSON file (default)
	StoreTypeFile StoreType = "file"

	// StoreTypeEtcd keeps the model under an etcd key
	StoreTypeEtcd StoreType = "etcd"
)
