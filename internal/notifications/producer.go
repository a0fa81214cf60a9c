package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"velocar/pkg/logger"
)

// Event types published after a settlement transition is durable.
const (
	EventBookingConfirmed    = "BookingConfirmed"
	EventCreditIssued        = "CreditIssued"
	EventMembershipActivated = "MembershipActivated"
)

// Event is the JSON envelope placed on the settlement topic. Downstream
// consumers (email, calendar, messaging dispatchers) are out of process.
type Event struct {
	Type       string                 `json:"type"`
	OrderID    string                 `json:"order_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Producer interface defines the contract for publishing settlement events
type Producer interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka event producer
type KafkaProducerConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	Timeout      time.Duration
	RequiredAcks sarama.RequiredAcks
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "settlement-notifications",
		RetryMax:     3,
		Timeout:      10 * time.Second,
		RequiredAcks: sarama.WaitForAll,
	}
}

// KafkaProducer publishes settlement events to Kafka, keyed by order id so
// all events for one order land on one partition in order.
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaProducer creates a new Kafka settlement event producer
func NewKafkaProducer(config *KafkaProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

// Publish sends one settlement event. The caller treats failures as
// best-effort: the settlement transition is already durable.
func (p *KafkaProducer) Publish(ctx context.Context, event *Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.OrderID),
		Value:     sarama.ByteEncoder(raw),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish settlement event: %w", err)
	}

	p.log.InfoContext(ctx, "settlement event published",
		"type", event.Type,
		"order_id", event.OrderID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}

// LogProducer is the fallback when Kafka is disabled or unreachable: events
// are logged and dropped instead of blocking settlement.
type LogProducer struct {
	log *logger.Logger
}

func NewLogProducer() Producer {
	return &LogProducer{log: logger.GetDefault()}
}

func (p *LogProducer) Publish(ctx context.Context, event *Event) error {
	p.log.InfoContext(ctx, "settlement event (kafka disabled)",
		"type", event.Type,
		"order_id", event.OrderID,
	)
	return nil
}

func (p *LogProducer) Close() error {
	return nil
}
