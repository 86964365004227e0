// Package kafka publishes memory events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/mentor/pkg/eventstream"
	"github.com/papercomputeco/mentor/pkg/logger"
)

// DefaultTopic is used when Config.Topic is empty.
const DefaultTopic = "mentor.memory"

// Config holds configuration for the Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string

	// WriteTimeout bounds a single publish. Defaults to 5s.
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes JSON encoded memory events keyed by collection, so
// events for one memory stay ordered within a partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
	closed  atomic.Bool
}

// NewPublisher creates a publisher for the configured brokers and topic.
func NewPublisher(c Config, log *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           timeout,
	}

	log = logger.OrNop(log)
	log.Info("kafka event publisher configured", "brokers", c.Brokers, "topic", topic)

	return newPublisher(w, timeout, log), nil
}

func newPublisher(w messageWriter, timeout time.Duration, log *slog.Logger) *Publisher {
	return &Publisher{
		writer:  w,
		timeout: timeout,
		logger:  logger.OrNop(log),
	}
}

// Publish encodes and writes one event.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.MemoryEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.closed.Load() {
		return eventstream.ErrClosed
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding memory event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.Source.Collection),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("writing memory event %s: %w", event.EventID, err)
	}

	p.logger.Debug("published memory event", "type", event.EventType, "id", event.EventID)

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
