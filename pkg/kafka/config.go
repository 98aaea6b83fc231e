package kafka

import "time"

// ProducerConfig configures the Kafka producer
type ProducerConfig struct {
	// Brokers is a list of Kafka broker addresses
	Brokers []string

	// Topic receives mapping-completed events
	Topic string

	// BatchSize is the number of messages to batch before sending
	BatchSize int

	// BatchTimeout is the maximum time to wait before sending a batch
	BatchTimeout time.Duration

	// RequiredAcks: 0 = no acks, 1 = leader only, -1 = all replicas
	RequiredAcks int

	// MaxAttempts is the maximum number of retries
	MaxAttempts int

	// WriteTimeout is the timeout for write operations
	WriteTimeout time.Duration

	// Compression is one of none, gzip, snappy, lz4, zstd
	Compression string
}

func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "mapping.step.completed",
		BatchSize:    100,
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: 1,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		Compression:  "snappy",
	}
}
