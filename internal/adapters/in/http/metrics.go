package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	factory := promauto.With(reg)
	return &ServerMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchenpos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		LatencyMS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kitchenpos",
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler", "method"}),
	}
}

// Middleware records every request under its route template, so /api/orders/42
// and /api/orders/43 share one series.
func (m *ServerMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			handler := c.Path()
			if handler == "" {
				handler = "unmatched"
			}
			method := c.Request().Method
			m.Requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(handler, method).Observe(float64(time.Since(start).Milliseconds()))
			return err
		}
	}
}
