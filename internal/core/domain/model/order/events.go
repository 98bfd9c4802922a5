package order

import (
	"time"

	"kitchenpos/internal/core/domain/model/kernel"
)

// EventName is the name clients subscribe to on the realtime channel.
type EventName string

const (
	// EventNewOrder is emitted after an order was created.
	EventNewOrder EventName = "new_order"
	// EventOrderUpdated is emitted after an order status was changed.
	EventOrderUpdated EventName = "order_updated"
)

// Event is a committed state change together with the full order snapshot.
type Event struct {
	ID         kernel.UUID
	Name       EventName
	Order      *Order
	OccurredAt time.Time
}

// NewOrderCreatedEvent wraps a freshly stored order.
func NewOrderCreatedEvent(o *Order) Event {
	return Event{ID: kernel.NewUUID(), Name: EventNewOrder, Order: o, OccurredAt: o.CreatedAt()}
}

// NewOrderUpdatedEvent wraps an order whose status was just changed.
func NewOrderUpdatedEvent(o *Order) Event {
	return Event{ID: kernel.NewUUID(), Name: EventOrderUpdated, Order: o, OccurredAt: o.UpdatedAt()}
}
