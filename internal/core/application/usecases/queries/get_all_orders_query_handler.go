package queries

import (
	"context"

	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/ports"
)

type GetAllOrdersQueryHandler struct {
	reader ports.OrderReader
}

func NewGetAllOrdersQueryHandler(reader ports.OrderReader) GetAllOrdersQueryHandler {
	return GetAllOrdersQueryHandler{reader: reader}
}

// Handle returns an empty, non-nil slice when there are no orders.
func (h GetAllOrdersQueryHandler) Handle(ctx context.Context, query GetAllOrdersQuery) ([]views.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.reader.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return views.FromOrders(orders), nil
}
