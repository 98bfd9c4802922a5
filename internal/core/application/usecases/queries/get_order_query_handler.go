package queries

import (
	"context"

	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/ports"
)

type GetOrderQueryHandler struct {
	reader ports.OrderReader
}

func NewGetOrderQueryHandler(reader ports.OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{reader: reader}
}

// Handle returns errs.ErrObjectNotFound when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (views.Order, error) {
	if err := query.Validate(); err != nil {
		return views.Order{}, err
	}

	o, err := h.reader.Get(ctx, query.OrderID())
	if err != nil {
		return views.Order{}, err
	}

	return views.FromOrder(o), nil
}
