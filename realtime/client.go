package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/duty-roster/metrics"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Handler receives every frame a client sends.
type Handler interface {
	HandleMessage(c *Client, in Inbound)
}

// Client is one websocket connection. UserID and Role come from the
// authenticated handshake, not from anything the client sends later.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	UserID string
	Role   models.Role

	// guarded by hub.mu
	rooms  map[string]struct{}
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, role models.Role) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		UserID: userID,
		Role:   role,
		rooms:  make(map[string]struct{}),
	}
}

func (c *Client) Hub() *Hub {
	return c.hub
}

// enqueue must be called with hub.mu held.
func (c *Client) enqueue(payload []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		metrics.DroppedMessages.Inc()
		return false
	}
}

// Reply sends msg to this client only.
func (c *Client) Reply(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	c.enqueue(payload)
}

// Run registers the client, pumps frames until the connection drops and
// then unregisters it. It blocks for the life of the connection.
func (c *Client) Run(handler Handler) {
	c.hub.Register(c)
	go c.writePump()
	c.readPump(handler)
	c.hub.Unregister(c)
}

func (c *Client) readPump(handler Handler) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.ErrorLogger.Errorf("socket read for user %s: %v", c.UserID, err)
			}
			return
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.Reply(EventError, "malformed frame")
			continue
		}
		handler.HandleMessage(c, in)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
