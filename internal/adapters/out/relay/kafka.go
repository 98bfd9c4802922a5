package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/domain/model/order"

	"github.com/segmentio/kafka-go"
)

const DefaultKafkaTopic = "orders.changed"

// MessageWriter is the subset of *kafka.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRelay writes every event to one topic keyed by order number, so all events
// of an order land on the same partition in order.
type KafkaRelay struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewKafkaRelay(writer MessageWriter, logger *slog.Logger) *KafkaRelay {
	return &KafkaRelay{writer: writer, logger: logger.With("component", "KafkaRelay")}
}

// NewKafkaWriter builds a writer for a comma separated broker list.
func NewKafkaWriter(brokersCSV, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (r *KafkaRelay) Name() string {
	return "kafka"
}

func (r *KafkaRelay) Deliver(ctx context.Context, event order.Event) error {
	value, err := json.Marshal(views.EventMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Order.Number().String()),
		Value: value,
		Time:  event.OccurredAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Name)},
			{Key: "event_id", Value: []byte(event.ID.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	r.logger.Debug("event relayed", "event", event.Name, "order_id", int64(event.Order.ID()))
	return nil
}

func (r *KafkaRelay) Close() error {
	return r.writer.Close()
}
