package commands

import (
	"errors"
	"math"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"
	"kitchenpos/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand moves an order to a new kitchen status.
//
//	cmd, err := NewChangeOrderStatusCommand(order.ID(42), "cooking")
//	if err != nil {
//	    return err // unknown status, nothing was touched
//	}
//	updated, err := handler.Handle(ctx, cmd)
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID order.ID
	status  order.Status

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand rejects ids below 1 and statuses outside the
// five kitchen statuses.
func NewChangeOrderStatusCommand(orderID order.ID, status string) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStatus(status),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return cmd, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() order.ID {
	return c.orderID
}

func (c ChangeOrderStatusCommand) Status() order.Status {
	return c.status
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID order.ID) error {
	if orderID < 1 {
		return errs.NewValueIsOutOfRangeError("order id", int64(orderID), 1, int64(math.MaxInt64))
	}
	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setStatus(status string) error {
	parsed, err := order.ParseStatus(status)
	if err != nil {
		return err
	}
	c.status = parsed
	return nil
}
