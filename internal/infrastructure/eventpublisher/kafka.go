package eventpublisher

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
)

const flushTimeoutMs = 5000

// producer is the subset of *kafka.Producer used by KafkaPublisher.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// KafkaPublisher writes outbox events to a Kafka topic keyed by aggregate id,
// so events of one wallet or operation stay ordered within a partition.
type KafkaPublisher struct {
	producer producer
	topic    string
	logger   *logging.Logger
}

// NewKafkaPublisher connects a producer to the given brokers.
func NewKafkaPublisher(brokers, topic string, logger *logging.Logger) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaPublisher(p, topic, logger), nil
}

func newKafkaPublisher(p producer, topic string, logger *logging.Logger) *KafkaPublisher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &KafkaPublisher{producer: p, topic: topic, logger: logger}
}

// Publish produces the event and waits for its delivery report.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := encodeEvent(event)
	if err != nil {
		return err
	}

	topic := p.topic
	delivery := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.AggregateID),
		Value:          body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}, delivery)
	if err != nil {
		return fmt.Errorf("produce event %s: %w", event.ID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T for %s", e, event.ID)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("deliver event %s: %w", event.ID, msg.TopicPartition.Error)
		}
		return nil
	}
}

// Close flushes pending messages and closes the producer.
func (p *KafkaPublisher) Close() {
	if remaining := p.producer.Flush(flushTimeoutMs); remaining > 0 {
		p.logger.Warn("kafka producer closed with undelivered messages", "count", remaining)
	}
	p.producer.Close()
	p.logger.Info("Kafka producer closed")
}
