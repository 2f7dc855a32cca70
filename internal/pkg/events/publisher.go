package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/segmentio/kafka-go"
)

const TransitionTopic = "leave.request.transitions"

type Publisher interface {
	PublishTransition(ctx context.Context, event leave.TransitionEvent) error
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishTransition(context.Context, leave.TransitionEvent) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaWriter builds a writer that hashes on the message key so every
// event of one request lands on the same partition.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer *kafka.Writer, topic string) Publisher {
	return newKafkaPublisher(writer, topic)
}

func newKafkaPublisher(writer messageWriter, topic string) *kafkaPublisher {
	if topic == "" {
		topic = TransitionTopic
	}
	return &kafkaPublisher{writer: writer, topic: topic}
}

func (p *kafkaPublisher) PublishTransition(ctx context.Context, event leave.TransitionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode transition event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.RequestID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish transition event: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
