package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"kitchenpos/internal/core/domain/model/kernel"
	"kitchenpos/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned for an Order not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
	// ErrOrderIsAlreadyPersisted is returned when the store assigns an identity twice.
	ErrOrderIsAlreadyPersisted = errors.New("order already has a store identity")
)

// ID is the store-assigned identifier. Values are positive, increasing and never reused.
type ID int64

// Order is a kitchen ticket: what was ordered, for how much, and how far the kitchen got.
//
// Invariants:
//   - number is assigned before the order is persisted and never changes
//   - items are opaque JSON values; Order only checks that each is well formed
//   - total is never negative
//   - createdAt and updatedAt are set by the store, updatedAt >= createdAt
type Order struct {
	id        ID
	number    Number
	items     []json.RawMessage
	total     kernel.Money
	status    Status
	notes     string
	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewOrder creates a Pending order that has not been stored yet. ID, CreatedAt and
// UpdatedAt stay zero until the store calls MarkPersisted.
//
//	number, _ := order.NewNumber(time.Now(), 1)
//	o, err := order.NewOrder(number, items, kernel.MustNewMoney("200"), "no onions")
func NewOrder(number Number, items []json.RawMessage, total kernel.Money, notes string) (*Order, error) {
	o := &Order{
		status:        Pending,
		notes:         notes,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setNumber(number),
		o.setItems(items),
		o.setTotal(total),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds a stored order. Used by repositories only.
func RestoreOrder(
	id ID,
	number Number,
	items []json.RawMessage,
	total kernel.Money,
	status Status,
	notes string,
	createdAt, updatedAt time.Time,
) (*Order, error) {
	o, err := NewOrder(number, items, total, notes)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}
	o.status = status
	if err = o.MarkPersisted(id, createdAt); err != nil {
		return nil, err
	}
	if updatedAt.Before(createdAt) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"updated at",
			fmt.Errorf("%s is before created at %s", updatedAt.Format(time.RFC3339Nano), createdAt.Format(time.RFC3339Nano)),
		)
	}
	o.updatedAt = updatedAt
	return o, nil
}

// MarkPersisted records the identity and creation time assigned by the store.
func (o *Order) MarkPersisted(id ID, at time.Time) error {
	if o.id != 0 {
		return ErrOrderIsAlreadyPersisted
	}
	if id <= 0 {
		return errs.NewValueIsOutOfRangeError("order id", int64(id), 1, int64(math.MaxInt64))
	}
	o.id = id
	o.createdAt = at
	o.updatedAt = at
	return nil
}

// Validate ensures the order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares store identities; unsaved orders are never equal.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id != 0 && o.id == other.id
}

func (o *Order) ID() ID {
	return o.id
}

func (o *Order) Number() Number {
	return o.number
}

// Items returns a copy of the line items in submission order.
func (o *Order) Items() []json.RawMessage {
	out := make([]json.RawMessage, len(o.items))
	for i, item := range o.items {
		out[i] = append(json.RawMessage(nil), item...)
	}
	return out
}

// ItemsJSON encodes the items as a JSON array; an order without items encodes as [].
func (o *Order) ItemsJSON() ([]byte, error) {
	return json.Marshal(o.Items())
}

func (o *Order) Total() kernel.Money {
	return o.total
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Notes() string {
	return o.notes
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) setNumber(number Number) error {
	if err := number.Validate(); err != nil {
		return err
	}
	o.number = number
	return nil
}

func (o *Order) setItems(items []json.RawMessage) error {
	copied := make([]json.RawMessage, 0, len(items))
	for i, item := range items {
		if !json.Valid(item) {
			return errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("item %d is not valid JSON", i))
		}
		copied = append(copied, append(json.RawMessage(nil), item...))
	}
	o.items = copied
	return nil
}

func (o *Order) setTotal(total kernel.Money) error {
	if err := total.Validate(); err != nil {
		return err
	}
	o.total = total
	return nil
}

// ParseItems decodes a JSON array of line items. null and empty input mean no items.
func ParseItems(raw []byte) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []json.RawMessage{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("items", errors.New("items must be a JSON array"))
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
