// Package http exposes the order board over REST: listing, submitting and moving
// orders through their statuses. Requests are validated against openapi.yaml;
// core errors are translated to status codes in errors.go.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"kitchenpos/internal/core/application/usecases/commands"
	"kitchenpos/internal/core/application/usecases/queries"
	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Server implements ServerInterface on top of the order use cases.
type Server struct {
	// Command handlers
	createOrderHandler       commands.CreateOrderCommandHandler
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler

	// Query handlers
	getAllOrdersHandler    queries.GetAllOrdersQueryHandler
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler
	getOrderHandler        queries.GetOrderQueryHandler

	createOptions commands.CreateOrderOptions
	logger        *slog.Logger
}

func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler,
	getAllOrdersHandler queries.GetAllOrdersQueryHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	createOptions commands.CreateOrderOptions,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		changeOrderStatusHandler: changeOrderStatusHandler,
		getAllOrdersHandler:      getAllOrdersHandler,
		getActiveOrdersHandler:   getActiveOrdersHandler,
		getOrderHandler:          getOrderHandler,
		createOptions:            createOptions,
		logger:                   logger.With("component", "HTTPServer"),
	}
}

type newOrderRequest struct {
	Items       []json.RawMessage `json:"items"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Notes       *string           `json:"notes"`
}

type statusChangeRequest struct {
	Status any `json:"status"`
}

// ListOrders handles GET /api/orders.
func (s *Server) ListOrders(ctx echo.Context) error {
	orders, err := s.getAllOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetAllOrdersQuery())
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, orders)
}

// ListPendingOrders handles GET /api/orders/pending.
func (s *Server) ListPendingOrders(ctx echo.Context) error {
	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetActiveOrdersQuery())
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/{id}.
func (s *Server) GetOrder(ctx echo.Context, id int64) error {
	query, err := queries.NewGetOrderQuery(order.ID(id))
	if err != nil {
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
	}

	result, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}
	return ctx.JSON(http.StatusOK, result)
}

// CreateOrder handles POST /api/orders. Missing fields default to no items, a
// zero total and empty notes.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req newOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
	}

	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	cmd, err := commands.NewCreateOrderCommand(req.Items, req.TotalAmount, notes, s.createOptions)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	s.logger.Info("order created",
		"order_id", int64(created.ID()),
		"order_number", created.Number().String())
	return ctx.JSON(http.StatusCreated, views.FromOrder(created))
}

// ChangeOrderStatus handles PUT /api/orders/{id}/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context, id int64) error {
	var req statusChangeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidStatus})
	}

	status, _ := req.Status.(string)
	cmd, err := commands.NewChangeOrderStatusCommand(order.ID(id), status)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	updated, err := s.changeOrderStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, s.logger, err)
	}

	s.logger.Info("order status changed",
		"order_id", int64(updated.ID()),
		"status", updated.Status().String())
	return ctx.JSON(http.StatusOK, views.FromOrder(updated))
}
