package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 8
)

// Hub pushes dashboard snapshots to browsers over WebSocket
type Hub struct {
	upgrader       websocket.Upgrader
	allowedOrigins []string
	logger         zerolog.Logger

	mutex   sync.RWMutex
	clients map[*streamClient]struct{}
	latest  []byte
}

// streamClient is one connected browser. send is closed when the client is
// removed from the hub.
type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a stream hub. Requests without an Origin header are always
// accepted; "*" in allowedOrigins accepts any origin.
func NewHub(logger zerolog.Logger, allowedOrigins ...string) *Hub {
	h := &Hub{
		allowedOrigins: allowedOrigins,
		logger:         logger.With().Str("component", "hub").Logger(),
		clients:        make(map[*streamClient]struct{}),
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the incoming request's Origin against the allowlist
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}

	// Same host as the dashboard itself
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}

	h.logger.Warn().Str("origin", origin).Msg("Rejected WebSocket connection: origin not in allowlist")
	return false
}

// ServeHTTP upgrades the request and streams snapshots until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

// Publish broadcasts a snapshot to every connected client. Clients whose
// send queue is full are dropped.
func (h *Hub) Publish(snapshot models.Snapshot) {
	msg, err := models.NewMessage(models.MessageTypeSnapshot, snapshot)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create snapshot message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode snapshot message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.latest = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("Client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// register adds a client and queues the latest snapshot for it
func (h *Hub) register(c *streamClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	h.logger.Info().
		Str("remote", c.conn.RemoteAddr().String()).
		Int("clients", len(h.clients)).
		Msg("Dashboard client connected")
}

func (h *Hub) remove(c *streamClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *streamClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info().
		Str("remote", c.conn.RemoteAddr().String()).
		Int("clients", len(h.clients)).
		Msg("Dashboard client disconnected")
}

// readLoop discards client messages and detects disconnects via the pong
// deadline.
func (h *Hub) readLoop(c *streamClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			return
		}
	}
}

// writeLoop is the only goroutine writing to the connection
func (h *Hub) writeLoop(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to send snapshot")
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
