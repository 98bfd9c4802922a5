package commands

import (
	"context"
	"time"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/core/domain/services"
	"kitchenpos/internal/core/ports"
	"kitchenpos/internal/pkg/keylock"
)

// ChangeOrderStatusCommandHandler applies status changes and announces them with
// an order_updated event.
//
// The policy is enforced by the store inside the UPDATE statement itself. Updates
// of the same order are serialized by a striped lock spanning commit and publish,
// so their events leave in commit order; different orders proceed in parallel.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	policy     services.StatusPolicy
	now        func() time.Time

	locks *keylock.Striped
}

func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	policy services.StatusPolicy,
	now func() time.Time,
) ChangeOrderStatusCommandHandler {
	if policy == nil {
		policy = services.NewPermissivePolicy()
	}
	if now == nil {
		now = time.Now
	}
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		policy:     policy,
		now:        now,
		locks:      keylock.New(keylock.DefaultStripes),
	}
}

// Handle returns the updated order. An unknown id yields errs.ErrObjectNotFound and
// a change the policy forbids yields order.ErrTransitionNotAllowed; neither publishes.
func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(int64(cmd.OrderID()))
	defer unlock()

	updated, err := h.store(ctx, cmd)
	if err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, order.NewOrderUpdatedEvent(updated))
	return updated, nil
}

func (h *ChangeOrderStatusCommandHandler) store(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	updated, err := uow.OrderRepository().UpdateStatus(
		ctx,
		cmd.OrderID(),
		cmd.Status(),
		h.policy.AllowedFrom(cmd.Status()),
		h.now(),
	)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}
