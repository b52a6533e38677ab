package api

import (
	"net/http"
	"sync"
	"time"

	models "MarketPulse/internal/domain/models"
	xlogger "MarketPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AlertsHub fans each sweep's alerts out to connected websocket clients.
// A slow client gets dropped rather than backpressuring the sweeper.
type AlertsHub struct {
	logger *xlogger.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []models.Alert
}

func NewAlertsHub(logger *xlogger.Logger) *AlertsHub {
	return &AlertsHub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *AlertsHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Serve)
}

// Serve upgrades the connection and streams alert batches until the client
// goes away.
func (h *AlertsHub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []models.Alert, wsSendBuffer),
	}
	h.add(client)
	h.logger.Debug("websocket client connected",
		xlogger.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(client)
	h.readLoop(client)
	return nil
}

// Broadcast queues one sweep's alerts for every connected client. Clients
// whose send buffer is full are disconnected.
func (h *AlertsHub) Broadcast(alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- alerts:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Clients reports the number of connected clients.
func (h *AlertsHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *AlertsHub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *AlertsHub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *AlertsHub) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for alerts := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteJSON(alerts); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// readLoop discards inbound frames; it exists to notice disconnects.
func (h *AlertsHub) readLoop(c *wsClient) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
