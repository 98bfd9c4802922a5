package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// LoadSpec parses and validates the embedded API document.
func LoadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err = spec.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return spec, nil
}

// swaggerDoc serves the embedded document to echo-swagger through the swag registry.
type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

var swaggerOnce sync.Once

// registerSwagger makes the embedded document available as swag.Name. swag
// panics on a second registration and the document never changes, hence Once.
func registerSwagger(specJSON []byte) {
	swaggerOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc{json: string(specJSON)})
	})
}

func specJSON(spec *openapi3.T) ([]byte, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode openapi document: %w", err)
	}
	return body, nil
}

// requestValidator checks /api requests against the document before they reach
// the handlers. Requests the document does not describe pass through untouched.
func requestValidator(spec *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return validationFailure(c, err)
			}
			return next(c)
		}
	}, nil
}

// validationFailure keeps the API's error contract: an id that is not a number
// cannot name an order, so it is answered like an unknown id.
func validationFailure(c echo.Context, err error) error {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Parameter != nil && reqErr.Parameter.In == openapi3.ParameterInPath {
		return c.JSON(http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
	}
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
}
