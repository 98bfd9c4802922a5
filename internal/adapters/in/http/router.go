package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig collects what NewRouter mounts.
type RouterConfig struct {
	Server   ServerInterface
	Realtime echo.HandlerFunc
	Metrics  *ServerMetrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter builds the echo instance serving the API, the realtime channel,
// health, metrics and the API document.
func NewRouter(cfg RouterConfig) (*echo.Echo, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	doc, err := specJSON(spec)
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(spec)
	if err != nil {
		return nil, err
	}
	registerSwagger(doc)

	logger := cfg.Logger.With("component", "HTTP")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.Warn("request", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.Middleware())
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.Realtime != nil {
		e.GET("/ws", cfg.Realtime)
	}

	e.GET("/api/openapi.json", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, doc)
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/api/openapi.json")))

	api := e.Group("/api", validate)
	RegisterHandlers(api, cfg.Server, "")

	return e, nil
}
