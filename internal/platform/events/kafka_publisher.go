package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by POI id, so that all
// events for one POI land on the same partition.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = TopicRatingSubmitted
	}
	return &KafkaPublisher{w: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafkago.RequireOne,
		// one event per request; do not wait for a batch to fill
		BatchTimeout: 10 * time.Millisecond,
	}}
}

// PublishRatingSubmitted implements Publisher.
func (p *KafkaPublisher) PublishRatingSubmitted(ctx context.Context, ev RatingSubmitted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, kafkago.Message{Key: []byte(ev.PoiID), Value: data}); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
