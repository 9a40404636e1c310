package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

const transactionTopic = "minibank.transactions"

// KafkaPublisher publishes transaction events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher targeting the given brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    transactionTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish serializes the event and writes it keyed by transaction id so
// replays for the same transaction land on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event TransactionCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TxID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
