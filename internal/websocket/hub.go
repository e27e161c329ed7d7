package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"vendorledger/internal/auth"
	"vendorledger/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Event is the frame pushed to subscribers.
type Event struct {
	Event    string    `json:"event"`
	VendorID uint      `json:"vendor_id"`
	Data     any       `json:"data"`
	SentAt   time.Time `json:"sent_at"`
}

type envelope struct {
	vendorID uint
	payload  []byte
}

// Client is one connected subscriber. It only receives events of its vendor.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	vendorID uint
}

// Hub fans ledger events out to the connected clients of each vendor.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	log        *zap.Logger
	upgrader   websocket.Upgrader
}

// NewHub builds a hub. allowedOrigins empty means any origin.
func NewHub(log *zap.Logger, allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// Run is the dispatch loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("client connected", zap.Uint("vendor_id", client.vendorID), zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("client disconnected", zap.Uint("vendor_id", client.vendorID))
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.vendorID != msg.vendorID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish queues an event for the vendor's subscribers. It never blocks the caller:
// when the queue is full the event is dropped and logged.
func (h *Hub) Publish(vendorID uint, event string, payload any) {
	data, err := json.Marshal(Event{Event: event, VendorID: vendorID, Data: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.log.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{vendorID: vendorID, payload: data}:
	case <-h.done:
	default:
		h.log.Warn("event dropped, hub queue full", zap.String("event", event), zap.Uint("vendor_id", vendorID))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for close and pong frames; clients never send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// ServeWs authenticates the ?token= query parameter and subscribes vendors and employees.
func (h *Hub) ServeWs(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, err := tokens.Parse(tokenString)
		if err != nil {
			h.log.Debug("websocket rejected", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if claims.Role != model.RoleVendor && claims.Role != model.RoleEmployee {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), vendorID: claims.VendorID}
		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
