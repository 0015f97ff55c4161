package events

import (
	"context"
	"fmt"

	"p2plending/internal/domain/loan"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed by loan key so a loan's
// events stay ordered within a partition.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		MaxAttempts:            3,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e loan.Event) error {
	env := NewEnvelope(e)
	payload, err := env.marshal()
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(env.key()),
		Value: payload,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "topic", Value: []byte(env.Topic)},
			{Key: "event_id", Value: []byte(env.ID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: kafka write %s: %w", e.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
