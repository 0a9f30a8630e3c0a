package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers domain events. Delivery is at-least-once; consumers
// deduplicate on their side.
type Publisher interface {
	PublishAccountEvent(ctx context.Context, ev AccountEvent) error
	PublishTransactionEvent(ctx context.Context, ev TransactionEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a Publisher on one shared writer; the topic is
// set per message.
func NewKafkaPublisher(brokers []string, writeTimeout time.Duration) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			slog.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishAccountEvent(ctx context.Context, ev AccountEvent) error {
	return p.publish(ctx, TopicAccountEvents, ev.AccountNumber, ev)
}

func (p *kafkaPublisher) PublishTransactionEvent(ctx context.Context, ev TransactionEvent) error {
	return p.publish(ctx, TopicTransactionEvents, ev.TransactionID, ev)
}

func (p *kafkaPublisher) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.writer.WriteTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", topic, err)
	}

	return nil
}

func (p *kafkaPublisher) Close() error {
	err := p.writer.Close()
	if err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}

	return nil
}
