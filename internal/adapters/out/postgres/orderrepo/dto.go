// Package orderrepo maps the Order aggregate onto the orders and order_sequences
// tables and implements the Order Store on top of GORM.
package orderrepo

import (
	"fmt"
	"time"

	"kitchenpos/internal/core/domain/model/kernel"
	"kitchenpos/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO is the orders row. Items are kept in a json (not jsonb) column so the
// submitted element text and order survive the round trip.
type OrderDTO struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderNumber string          `gorm:"type:varchar(15);not null;uniqueIndex:uq_orders_order_number"`
	Items       datatypes.JSON  `gorm:"type:json;not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null"`
	Status      string          `gorm:"type:varchar(16);not null;default:pending;index:idx_orders_status;check:chk_orders_status,status IN ('pending','received','cooking','ready','completed')"`
	Notes       string          `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;not null;index:idx_orders_created_at;autoCreateTime:false"`
	UpdatedAt   time.Time       `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// SequenceDTO is the per-day order number counter.
type SequenceDTO struct {
	Day       string `gorm:"type:char(8);primaryKey"`
	LastValue int    `gorm:"not null"`
}

func (SequenceDTO) TableName() string {
	return "order_sequences"
}

func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	items, err := aggregate.ItemsJSON()
	if err != nil {
		return OrderDTO{}, err
	}
	return OrderDTO{
		ID:          int64(aggregate.ID()),
		OrderNumber: aggregate.Number().String(),
		Items:       datatypes.JSON(items),
		TotalAmount: aggregate.Total().Decimal(),
		Status:      aggregate.Status().String(),
		Notes:       aggregate.Notes(),
		CreatedAt:   aggregate.CreatedAt(),
		UpdatedAt:   aggregate.UpdatedAt(),
	}, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	number, err := order.ParseNumber(dto.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", dto.ID, err)
	}
	items, err := order.ParseItems(dto.Items)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", dto.ID, err)
	}
	total, err := kernel.NewMoney(dto.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", dto.ID, err)
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", dto.ID, err)
	}
	return order.RestoreOrder(
		order.ID(dto.ID),
		number,
		items,
		total,
		status,
		dto.Notes,
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
