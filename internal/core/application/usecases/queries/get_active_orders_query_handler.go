package queries

import (
	"context"

	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/ports"
)

// GetActiveOrdersQueryHandler serves the pending list. A completed order never
// appears in its result.
type GetActiveOrdersQueryHandler struct {
	reader ports.OrderReader
}

func NewGetActiveOrdersQueryHandler(reader ports.OrderReader) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{reader: reader}
}

func (h GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]views.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.reader.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	return views.FromOrders(orders), nil
}
