// Package stream publishes order events to Kafka for downstream consumers
// (analytics, the events:tail command).
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the record written to the order topic, keyed by order id so
// every event for one order lands on one partition in order.
type Event struct {
	Name     string          `json:"name"`
	OrderID  string          `json:"orderId"`
	Status   string          `json:"status,omitempty"`
	Occurred time.Time       `json:"occurred"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to a topic.
type Publisher struct {
	w MessageWriter
}

// NewPublisher wraps w.
func NewPublisher(w MessageWriter) *Publisher { return &Publisher{w: w} }

// NewKafkaWriter returns a writer for topic on brokers, balancing by key.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// Publish writes ev.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("stream: marshal %s: %w", ev.Name, err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Name)},
		},
	})
	if err != nil {
		return fmt.Errorf("stream: publish %s: %w", ev.Name, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error { return p.w.Close() }

// MessageReader is the part of *kafka.Reader Tail needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewKafkaReader returns a consumer-group reader for topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// Tail decodes events from r and passes them to fn until ctx is cancelled
// or r fails. Undecodable records are skipped.
func Tail(ctx context.Context, r MessageReader, fn func(Event) error) error {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("stream: read: %w", err)
		}
		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
