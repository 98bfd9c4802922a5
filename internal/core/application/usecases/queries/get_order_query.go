package queries

import (
	"errors"
	"math"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"
	"kitchenpos/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves a single order by its store id.
type GetOrderQuery struct {
	orderID order.ID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID order.ID) (GetOrderQuery, error) {
	if orderID < 1 {
		return GetOrderQuery{}, errs.NewValueIsOutOfRangeError("order id", int64(orderID), 1, int64(math.MaxInt64))
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() order.ID {
	return q.orderID
}
