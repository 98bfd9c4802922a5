package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	msgInvalidStatus     = "Invalid status"
	msgInvalidTransition = "Invalid status transition"
	msgOrderNotFound     = "Order not found"
	msgInvalidBody       = "Invalid request body"
	msgInvalidTotal      = "Invalid total amount"
	msgInvalidItems      = "Invalid items"
	msgInternal          = "Internal server error"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError is the single place where core errors become HTTP responses.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err)
	}
	return c.JSON(status, errorResponse{Error: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, msgOrderNotFound
	case errors.Is(err, order.ErrTransitionNotAllowed):
		return http.StatusConflict, msgInvalidTransition
	case errs.IsValidation(err):
		return http.StatusBadRequest, validationMessage(err)
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func validationMessage(err error) string {
	switch invalidParam(err) {
	case "status":
		return msgInvalidStatus
	case "total amount":
		return msgInvalidTotal
	case "items":
		return msgInvalidItems
	default:
		return msgInvalidBody
	}
}

func invalidParam(err error) string {
	var invalid *errs.ValueIsInvalidError
	if errors.As(err, &invalid) {
		return invalid.ParamName
	}
	var required *errs.ValueIsRequiredError
	if errors.As(err, &required) {
		return required.ParamName
	}
	var outOfRange *errs.ValueIsOutOfRangeError
	if errors.As(err, &outOfRange) {
		return outOfRange.ParamName
	}
	return ""
}

// httpErrorHandler renders errors raised by echo itself (unknown route, wrong
// method, malformed body) in the API's error shape.
func httpErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			_ = writeError(c, logger, err)
			return
		}

		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, errorResponse{Error: message})
	}
}
