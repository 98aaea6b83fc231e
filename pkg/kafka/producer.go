package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes mapping-completed events.
type Producer struct {
	writer messageWriter
	logger ectologger.Logger
	config ProducerConfig
}

func NewProducer(config ProducerConfig, logger ectologger.Logger) (*Producer, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("a topic is required")
	}

	var compression kafka.Compression
	switch config.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	default:
		compression = 0 // No compression
	}

	// Topic stays empty on the writer; every message names its own.
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		MaxAttempts:            config.MaxAttempts,
		WriteTimeout:           config.WriteTimeout,
		Compression:            compression,
		RequiredAcks:           kafka.RequiredAcks(config.RequiredAcks),
		AllowAutoTopicCreation: true,
	}

	return newProducer(writer, config, logger), nil
}

func newProducer(writer messageWriter, config ProducerConfig, logger ectologger.Logger) *Producer {
	return &Producer{writer: writer, logger: logger, config: config}
}

// PublishMappingCompleted publishes one event to the configured topic.
func (p *Producer) PublishMappingCompleted(ctx context.Context, event models.MappingCompletedEvent) (err error) {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishMappingCompleted",
		attribute.String("topic", p.config.Topic), attribute.String("session_id", event.SessionID))
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			tracing.RecordError(span, err)
		}
		metrics.RecordKafkaPublish(p.config.Topic, status, time.Since(start).Seconds())
	}()

	msg, err := NewMappingCompletedMessage(p.config.Topic, event, tracing.GetTraceParent(ctx))
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":      p.config.Topic,
		"session_id": event.SessionID,
	}).Debug("published mapping completed event")
	return nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}
