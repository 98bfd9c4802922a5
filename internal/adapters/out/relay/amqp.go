// Package relay forwards order events to message brokers so that services other
// than the browsers can follow the order board. Relays are broadcast.Sink
// implementations; their failures are logged by the broadcaster and never reach
// the request that changed the order.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/domain/model/order"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultAMQPExchange = "orders_fanout"

// AMQPChannel is the subset of *amqp.Channel the relay needs.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPRelay publishes every event to a durable fanout exchange.
type AMQPRelay struct {
	channel  AMQPChannel
	exchange string
	logger   *slog.Logger
}

// NewAMQPRelay declares the exchange and returns the relay.
func NewAMQPRelay(channel AMQPChannel, exchange string, logger *slog.Logger) (*AMQPRelay, error) {
	if exchange == "" {
		exchange = DefaultAMQPExchange
	}
	if err := channel.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &AMQPRelay{
		channel:  channel,
		exchange: exchange,
		logger:   logger.With("component", "AMQPRelay"),
	}, nil
}

func (r *AMQPRelay) Name() string {
	return "amqp"
}

// Deliver publishes the realtime frame of event. The routing key carries the
// event name for consumers that rebind the exchange as topic.
func (r *AMQPRelay) Deliver(ctx context.Context, event order.Event) error {
	body, err := json.Marshal(views.EventMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = r.channel.PublishWithContext(ctx, r.exchange, string(event.Name), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Name),
		Headers: amqp.Table{
			"order_id":     int64(event.Order.ID()),
			"order_number": event.Order.Number().String(),
			"status":       event.Order.Status().String(),
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", r.exchange, err)
	}
	r.logger.Debug("event relayed", "event", event.Name, "order_id", int64(event.Order.ID()))
	return nil
}

func (r *AMQPRelay) Close() error {
	return r.channel.Close()
}

// AMQPConnection owns the broker connection of the relay.
type AMQPConnection struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

// DialAMQP connects to url and opens the channel the relay publishes on.
func DialAMQP(url string) (*AMQPConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &AMQPConnection{conn: conn, Channel: ch}, nil
}

func (c *AMQPConnection) Close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}
