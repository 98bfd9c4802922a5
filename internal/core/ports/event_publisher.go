package ports

import (
	"context"

	"kitchenpos/internal/core/domain/model/order"
)

// EventPublisher hands committed state changes to the realtime fan-out.
//
// Publish must not block on subscribers and must not fail the caller: delivery
// problems are the publisher's to log. Events published by one goroutine are
// delivered in the order they were published.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event)
}
