// Package events publishes booking and identity lifecycle events to Kafka.
// Publishing is best-effort: callers log failures and never fail the request
// over a broker problem.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const sourceService = "stayhub"

type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	closed bool
	mu     sync.RWMutex
}

// NewPublisher returns a Kafka-backed publisher, or a noop publisher when no
// brokers are configured so callers never need to branch.
func NewPublisher(brokers []string, topic string) (Publisher, error) {
	if len(brokers) == 0 {
		return NoopPublisher{}, nil
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // hash by key keeps per-aggregate ordering
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
	}

	return &kafkaPublisher{writer: writer}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPublisherClosed
	}
	p.mu.RUnlock()

	if key == "" {
		return ErrEmptyKey
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderSource, Value: []byte(sourceService)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NoopPublisher discards events; used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
