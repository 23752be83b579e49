package collection

import (
	"context"

	"github.com/relabs-tech/collectiond/core/logger"
	kafka "github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes "<collection>:changed" events to a Kafka
// topic, for deployments where multiple processes must observe the
// same collection's changes - a broadcast notifier beyond a single
// process's Session.EmitToAll.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier returns a KafkaNotifier writing to topic over the
// given brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Notify implements Notifier. Delivery failures are logged, not
// returned - change notification is fire-and-forget relative to the
// client reply. The topic is process-wide, not per-session, so ctx
// itself is unused here - it exists to satisfy Notifier for callers
// that do need the request's session.
func (n *KafkaNotifier) Notify(ctx Context, collection string) {
	err := n.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(collection),
		Value: []byte(collection + ":changed"),
	})
	if err != nil {
		logger.Default().Errorf("kafka notify %s: %v", collection, err)
	}
}

// Close releases the underlying Kafka writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
