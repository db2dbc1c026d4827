// Package events publishes committed directory mutations to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gartstein/directory/internal/directory/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	jsonMarshal = json.Marshal
	now         = time.Now
)

type EventType string

const (
	CompanyCreated EventType = "company_created"
	CompanyUpdated EventType = "company_updated"
	CompanyDeleted EventType = "company_deleted"
)

// HeaderEventType carries the EventType so consumers can filter without
// decoding the payload.
const HeaderEventType = "event_type"

const (
	queueSize = 1000
	// maxBatch bounds how many queued events go out in one write.
	maxBatch = 100
)

// Event is the JSON payload of a change-feed message. Deletions carry the
// last known state of the company.
type Event struct {
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Company    models.Company `json:"company"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues events in memory and writes them from a single
// goroutine, keyed by company id so one company's events stay ordered.
type Producer struct {
	writer  KafkaWriter
	queue   chan Event
	logger  *zap.Logger
	stop    chan struct{}
	stopped chan struct{}
}

// NewProducer ensures the topic exists and starts the send loop.
func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}); err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newProducer(writer, logger, queueSize), nil
}

func newProducer(writer KafkaWriter, logger *zap.Logger, buffer int) *Producer {
	p := &Producer{
		writer:  writer,
		queue:   make(chan Event, buffer),
		logger:  logger.Named("kafka_producer"),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

// Produce enqueues an event without blocking; a full queue drops it.
func (p *Producer) Produce(eventType EventType, company models.Company) {
	event := Event{Type: eventType, OccurredAt: now().UTC(), Company: company}
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.Int64("company_id", company.ID),
		)
	}
}

func (p *Producer) run() {
	defer close(p.stopped)
	for {
		select {
		case event := <-p.queue:
			p.publish(context.Background(), p.collect(event))
		case <-p.stop:
			for batch := p.collect(); len(batch) > 0; batch = p.collect() {
				p.publish(context.Background(), batch)
			}
			return
		}
	}
}

// collect appends whatever is already queued, up to maxBatch events.
func (p *Producer) collect(first ...Event) []Event {
	batch := first
	for len(batch) < maxBatch {
		select {
		case event := <-p.queue:
			batch = append(batch, event)
		default:
			return batch
		}
	}
	return batch
}

func (p *Producer) publish(ctx context.Context, batch []Event) {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, event := range batch {
		msg, err := encode(event)
		if err != nil {
			p.logger.Error("Failed to serialize event",
				zap.Error(err),
				zap.Int64("company_id", event.Company.ID),
			)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Failed to produce events",
			zap.Error(err),
			zap.Int("count", len(msgs)),
		)
	}
}

func encode(event Event) (kafka.Message, error) {
	value, err := jsonMarshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(strconv.FormatInt(event.Company.ID, 10)),
		Value:   value,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(event.Type)}},
		Time:    event.OccurredAt,
	}, nil
}

// Close flushes queued events and closes the writer.
func (p *Producer) Close() {
	close(p.stop)
	<-p.stopped
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// Discard drops every event. It stands in when no brokers are configured.
type Discard struct{}

func (Discard) Produce(EventType, models.Company) {}
