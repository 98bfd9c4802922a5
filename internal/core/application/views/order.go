// Package views renders orders into the JSON payload shared by the HTTP API,
// the realtime channel and the relays.
package views

import (
	"encoding/json"
	"time"

	"kitchenpos/internal/core/domain/model/order"
)

// Order is the wire representation of an order.
type Order struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"order_number"`
	Items       []json.RawMessage `json:"items"`
	TotalAmount json.Number       `json:"total_amount"`
	Status      string            `json:"status"`
	Notes       string            `json:"notes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FromOrder renders o. Amounts keep their decimal text, so 200.50 is sent as
// the number 200.5 and never passes through float64.
func FromOrder(o *order.Order) Order {
	return Order{
		ID:          int64(o.ID()),
		OrderNumber: o.Number().String(),
		Items:       o.Items(),
		TotalAmount: json.Number(o.Total().String()),
		Status:      o.Status().String(),
		Notes:       o.Notes(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}

func FromOrders(orders []*order.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

// Message is one frame of the realtime channel and the body of relayed events.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EventMessage renders a domain event as a frame.
func EventMessage(e order.Event) Message {
	return Message{Event: string(e.Name), Data: FromOrder(e.Order)}
}

// ConnectedMessage greets a freshly connected realtime client.
func ConnectedMessage() Message {
	return Message{Event: "connected", Data: map[string]string{"data": "Connected to server"}}
}
