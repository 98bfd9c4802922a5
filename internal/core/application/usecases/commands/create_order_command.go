package commands

import (
	"encoding/json"
	"errors"

	"kitchenpos/internal/core/domain/model/kernel"
	"kitchenpos/internal/pkg/errs"
	"kitchenpos/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// CreateOrderOptions tune how strictly a submitted order is checked.
type CreateOrderOptions struct {
	// RequireItems rejects orders without line items.
	RequireItems bool
}

// CreateOrderCommand is a waiter's order submission. Items are opaque JSON values
// kept in submission order; the total is trusted as supplied.
//
//	cmd, err := NewCreateOrderCommand(items, decimal.RequireFromString("200"), "no onions", CreateOrderOptions{})
//	if err != nil {
//	    return fmt.Errorf("invalid order: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	items []json.RawMessage
	total kernel.Money
	notes string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates that the total is not negative and that every
// item is a JSON value.
func NewCreateOrderCommand(
	items []json.RawMessage,
	total decimal.Decimal,
	notes string,
	opts CreateOrderOptions,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		notes: notes,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setItems(items, opts.RequireItems),
		cmd.setTotal(total),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Items() []json.RawMessage {
	return c.items
}

func (c CreateOrderCommand) Total() kernel.Money {
	return c.total
}

func (c CreateOrderCommand) Notes() string {
	return c.notes
}

func (c *CreateOrderCommand) setItems(items []json.RawMessage, required bool) error {
	if required && len(items) == 0 {
		return ErrItemsAreRequired
	}
	for _, item := range items {
		if !json.Valid(item) {
			return errs.NewValueIsInvalidError("items")
		}
	}
	c.items = items
	return nil
}

func (c *CreateOrderCommand) setTotal(total decimal.Decimal) error {
	money, err := kernel.NewMoney(total)
	if err != nil {
		return err
	}
	c.total = money
	return nil
}
