// Package ports defines the contracts between the order core and its adapters:
// persistence (OrderRepository, UnitOfWork) and state change fan-out (EventPublisher).
package ports

import (
	"context"
	"time"

	"kitchenpos/internal/core/domain/model/order"
)

// OrderRepository is the Order Store contract.
//
// All methods are bounded by the store's I/O timeout and return errs.StorageError
// on I/O or transaction failures. Reads reflect the latest committed state.
type OrderRepository interface {
	// NextOrderNumber reserves the next number of the day containing at.
	// It must run in the same transaction as the Add that uses the number:
	// the reservation holds a lock on the day's counter until commit, so two
	// concurrent callers never receive the same number.
	NextOrderNumber(ctx context.Context, at time.Time) (order.Number, error)

	// Add persists a new pending order and assigns its ID. CreatedAt and UpdatedAt
	// are both set to at.
	Add(ctx context.Context, aggregate *order.Order, at time.Time) error

	// UpdateStatus atomically sets the status of order id and moves UpdatedAt to
	// at, or just past the previous UpdatedAt when the clock did not advance.
	// When allowedFrom is not nil the current status must be one of it, otherwise
	// an *order.TransitionError is returned and nothing changes.
	// Returns *errs.ObjectNotFoundError when id does not exist.
	UpdateStatus(
		ctx context.Context,
		id order.ID,
		to order.Status,
		allowedFrom []order.Status,
		at time.Time,
	) (*order.Order, error)

	OrderReader
}

// OrderReader is the read side of the Order Store, used by queries outside any
// transaction.
type OrderReader interface {
	// Get returns *errs.ObjectNotFoundError when id does not exist.
	Get(ctx context.Context, id order.ID) (*order.Order, error)

	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]*order.Order, error)

	// ListActive returns orders that are not completed, oldest first.
	ListActive(ctx context.Context) ([]*order.Order, error)
}

// SequenceRepository maintains the per-day order number counters.
type SequenceRepository interface {
	// PruneBefore deletes counters of days strictly before day (YYYYMMDD) and
	// returns how many were removed.
	PruneBefore(ctx context.Context, day string) (int64, error)
}
