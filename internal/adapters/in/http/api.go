package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// GET /api/orders
	ListOrders(ctx echo.Context) error
	// POST /api/orders
	CreateOrder(ctx echo.Context) error
	// GET /api/orders/pending
	ListPendingOrders(ctx echo.Context) error
	// GET /api/orders/{id}
	GetOrder(ctx echo.Context, id int64) error
	// PUT /api/orders/{id}/status
	ChangeOrderStatus(ctx echo.Context, id int64) error
}

// ServerInterfaceWrapper binds path parameters before calling the handlers.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) ListOrders(ctx echo.Context) error {
	return w.Handler.ListOrders(ctx)
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) ListPendingOrders(ctx echo.Context) error {
	return w.Handler.ListPendingOrders(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	id, ok := bindOrderID(ctx)
	if !ok {
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
	}
	return w.Handler.GetOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) ChangeOrderStatus(ctx echo.Context) error {
	id, ok := bindOrderID(ctx)
	if !ok {
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
	}
	return w.Handler.ChangeOrderStatus(ctx, id)
}

func bindOrderID(ctx echo.Context) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts si on router. Paths are relative to baseURL.
func RegisterHandlers(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/orders", wrapper.ListOrders)
	router.POST(baseURL+"/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/orders/pending", wrapper.ListPendingOrders)
	router.GET(baseURL+"/orders/:id", wrapper.GetOrder)
	router.PUT(baseURL+"/orders/:id/status", wrapper.ChangeOrderStatus)
}
