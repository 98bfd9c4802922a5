package commands

import (
	"context"
	"sync"
	"time"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/core/ports"
)

// CreateOrderCommandHandler stores new orders and announces them with a new_order
// event.
//
// The counter row lock keeps order numbers unique across processes. The handler's
// own mutex additionally spans commit and publish, so new_order events leave this
// process in the order their transactions committed.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	now        func() time.Time

	mu *sync.Mutex
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	now func() time.Time,
) CreateOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        now,
		mu:         &sync.Mutex{},
	}
}

// Handle reserves the next number of the day, stores the order as pending and
// publishes it. The returned order carries the store-assigned id and timestamps.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	created, err := h.store(ctx, cmd)
	if err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, order.NewOrderCreatedEvent(created))
	return created, nil
}

func (h *CreateOrderCommandHandler) store(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	at := h.now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	number, err := orderRepo.NextOrderNumber(ctx, at)
	if err != nil {
		return nil, err
	}

	created, err := order.NewOrder(number, cmd.Items(), cmd.Total(), cmd.Notes())
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Add(ctx, created, at); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}
