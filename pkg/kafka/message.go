package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/starsandeep/sfsync/pkg/models"
)

// MessageHeaders lets consumers filter events without decoding the body.
type MessageHeaders struct {
	SessionID    string
	UserID       string
	SourceObject string
	TargetObject string
	TraceParent  string
}

func (h MessageHeaders) ToKafkaHeaders() []kafka.Header {
	pairs := []struct{ key, value string }{
		{"session_id", h.SessionID},
		{"user_id", h.UserID},
		{"source_object", h.SourceObject},
		{"target_object", h.TargetObject},
		{"traceparent", h.TraceParent},
	}

	headers := make([]kafka.Header, 0, len(pairs))
	for _, p := range pairs {
		if p.value != "" {
			headers = append(headers, kafka.Header{Key: p.key, Value: []byte(p.value)})
		}
	}
	return headers
}

func ExtractHeaders(headers []kafka.Header) MessageHeaders {
	var mh MessageHeaders
	for _, h := range headers {
		switch h.Key {
		case "session_id":
			mh.SessionID = string(h.Value)
		case "user_id":
			mh.UserID = string(h.Value)
		case "source_object":
			mh.SourceObject = string(h.Value)
		case "target_object":
			mh.TargetObject = string(h.Value)
		case "traceparent":
			mh.TraceParent = string(h.Value)
		}
	}
	return mh
}

// NewMappingCompletedMessage builds the Kafka message for an event. Events
// are keyed by object pair so one pair's completions stay ordered.
func NewMappingCompletedMessage(topic string, event models.MappingCompletedEvent, traceParent string) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to serialize event: %w", err)
	}

	headers := MessageHeaders{
		SessionID:    event.SessionID,
		UserID:       event.UserID,
		SourceObject: event.SourceObject,
		TargetObject: event.TargetObject,
		TraceParent:  traceParent,
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(fmt.Sprintf("%s:%s", event.SourceObject, event.TargetObject)),
		Value:   data,
		Headers: headers.ToKafkaHeaders(),
		Time:    event.CompletedAt,
	}, nil
}
