package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/screen"
)

const (
	// writeWait is the deadline for writing a message to a client.
	writeWait = 10 * time.Second

	// clientBuffer is the per-client outbound queue. A client that
	// cannot drain it is dropped rather than backpressuring the hub.
	clientBuffer = 16
)

// Hub fans evaluation events out to connected WebSocket clients.
//
// It implements the scheduler's Broadcaster interface. Slow clients are
// disconnected; the control loop is never blocked on a socket.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
}

// wsClient is one connected WebSocket consumer.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EvaluationEvent is the wire format pushed to WebSocket clients after
// every screen evaluation.
type EvaluationEvent struct {
	Type     string          `json:"type"`
	Screen   screen.Status   `json:"screen"`
	Decision screen.Decision `json:"decision"`
	Moved    bool            `json:"moved"`
}

// NewHub creates a hub; Run must be called before clients connect.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, clientBuffer),
	}
}

// Run owns the client set until ctx is cancelled. All registration and
// broadcast traffic is serialised through the hub goroutine.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*wsClient]bool)

	defer func() {
		for c := range clients {
			close(c.send)
			c.conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = true
			h.logger.Debug("websocket client connected", "clients", len(clients))
		case c := <-h.unregister:
			if clients[c] {
				delete(clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// Client too slow; drop it.
					delete(clients, c)
					close(c.send)
				}
			}
		}
	}
}

// BroadcastEvaluation pushes one evaluation result to all clients.
// Non-blocking; the event is dropped when the hub is saturated.
func (h *Hub) BroadcastEvaluation(status screen.Status, decision screen.Decision, moved bool) {
	payload, err := json.Marshal(EvaluationEvent{
		Type:     "evaluation",
		Screen:   status,
		Decision: decision,
		Moved:    moved,
	})
	if err != nil {
		h.logger.Warn("encoding evaluation event failed", "error", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Debug("websocket broadcast dropped, hub saturated")
	}
}

// upgrader upgrades HTTP connections to WebSocket. The API is read-only
// and carries no credentials, so cross-origin dashboards are allowed.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and attaches it to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	s.Hub().register <- client

	go s.writePump(client)
	go s.readPump(client)
}

// writePump drains the client's send queue onto the socket, pinging on
// the configured interval.
func (s *Server) writePump(c *wsClient) {
	pingInterval := time.Duration(s.wsCfg.PingInterval) * time.Second
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // Deadline errors surface on write
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck // Closing anyway
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // Deadline errors surface on write
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes (and discards) client messages so pongs and close
// frames are processed, unregistering on disconnect.
func (s *Server) readPump(c *wsClient) {
	defer func() {
		s.Hub().unregister <- c
		c.conn.Close()
	}()

	pongTimeout := time.Duration(s.wsCfg.PongTimeout) * time.Second
	if pongTimeout <= 0 {
		pongTimeout = 60 * time.Second
	}
	wait := pongTimeout + time.Duration(s.wsCfg.PingInterval)*time.Second

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wait)) //nolint:errcheck // Deadline errors surface on read
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
