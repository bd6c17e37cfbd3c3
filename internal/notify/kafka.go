package notify

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/xenking/grocery-orders/internal/domain/order"
)

var _ order.Producer = (*KafkaProducer)(nil)

// KafkaProducer publishes order events to the notification topic. The
// fulfillment workflow dispatches through it without waiting, so delivery
// guarantees stop at the broker acknowledgement.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a producer writing to topic on the given brokers.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Dispatch publishes a single order event.
func (p *KafkaProducer) Dispatch(ctx context.Context, message string) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Value: []byte(message)})
}

// Close flushes pending writes and releases the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
