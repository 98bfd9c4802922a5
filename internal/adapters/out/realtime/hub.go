// Package realtime pushes order events to browsers over websockets.
//
// Hub is a broadcast.Sink. Each connected client has a bounded send buffer and a
// dedicated writer goroutine; when a buffer is full the client is disconnected
// rather than slowing down the others. There is no replay: a client only sees
// events delivered while it is connected.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kitchenpos/internal/core/application/views"
	"kitchenpos/internal/core/domain/model/kernel"
	"kitchenpos/internal/core/domain/model/order"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	DefaultClientBuffer = 64

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Options struct {
	ClientBuffer int
	// CheckOrigin defaults to accepting every origin, matching the API's CORS policy.
	CheckOrigin func(r *http.Request) bool
}

// Hub tracks connected clients and fans events out to them.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(logger *slog.Logger, opts Options) *Hub {
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = DefaultClientBuffer
	}
	if opts.CheckOrigin == nil {
		opts.CheckOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		logger: logger.With("component", "RealtimeHub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		buffer:  opts.ClientBuffer,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Deliver encodes event once and queues it on every client.
func (h *Hub) Deliver(_ context.Context, event order.Event) error {
	payload, err := json.Marshal(views.EventMessage(event))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("client is too slow, disconnecting", "client_id", c.id.String())
			h.removeLocked(c)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handle upgrades GET /ws and serves the client until it disconnects.
func (h *Hub) Handle(c echo.Context) error {
	h.ServeHTTP(c.Response(), c.Request())
	return nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered with an HTTP error
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	greeting, err := json.Marshal(views.ConnectedMessage())
	if err != nil {
		_ = conn.Close()
		return
	}

	c := &client{
		id:   kernel.NewUUID(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.buffer),
	}
	c.send <- greeting

	if !h.add(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	h.logger.Info("client connected", "client_id", c.id.String(), "remote_addr", r.RemoteAddr)

	go c.writePump()
	c.readPump()
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes the send buffer exactly once; the writer then closes the
// connection, which ends the reader.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info("client disconnected", "client_id", c.id.String())
}
