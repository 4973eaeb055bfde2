// Package realtime is the live push channel: an in-memory room registry
// over websocket clients. A Relay lets several instances share fan-out.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/duty-roster/metrics"
	"github.com/yeremiapane/duty-roster/models"
	"github.com/yeremiapane/duty-roster/utils"
)

// Server -> client events
const (
	EventNotification     = "notification"
	EventReadNotification = "readNotification"
	EventRosterUpdated    = "rosterUpdated"
	EventJoined           = "joined"
	EventError            = "error"
)

// Client -> server events
const (
	EventJoin       = "join"
	EventMarkAsRead = "markAsRead"
)

// BroadcastRoom holds every registered client.
const BroadcastRoom = "*"

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Inbound is a frame received from a client; Data is decoded by the handler.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func UserRoom(userID string) string {
	return "user:" + userID
}

func RoleRoom(role models.Role) string {
	return "role:" + string(role)
}

type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	relay   Relay
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// UseRelay routes every emit through r. Call before Start.
func (h *Hub) UseRelay(r Relay) {
	h.relay = r
}

// Start consumes the relay until ctx is done. Without a relay it returns at once.
func (h *Hub) Start(ctx context.Context) {
	if h.relay == nil {
		return
	}
	go func() {
		err := h.relay.Run(ctx, func(env Envelope) {
			h.Deliver(env.Room, env.Payload)
		})
		if err != nil && ctx.Err() == nil {
			utils.ErrorLogger.Errorf("realtime relay stopped: %v", err)
		}
	}()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.join(c, BroadcastRoom)
	metrics.SocketConnections.Inc()
}

// Unregister removes c from every room and closes its send buffer.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clients, c)
	c.closed = true
	close(c.send)
	metrics.SocketConnections.Dec()
}

func (h *Hub) Join(c *Client, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for _, room := range rooms {
		h.join(c, room)
	}
}

func (h *Hub) join(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) EmitToUser(userID, event string, data interface{}) {
	h.emit("user", UserRoom(userID), Message{Event: event, Data: data})
}

func (h *Hub) EmitToRole(role models.Role, event string, data interface{}) {
	h.emit("role", RoleRoom(role), Message{Event: event, Data: data})
}

func (h *Hub) EmitToAll(event string, data interface{}) {
	h.emit("all", BroadcastRoom, Message{Event: event, Data: data})
}

func (h *Hub) emit(scope, room string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("marshal %s event: %v", msg.Event, err)
		return
	}
	metrics.EmittedEvents.WithLabelValues(scope, msg.Event).Inc()

	if h.relay != nil {
		err := h.relay.Publish(context.Background(), Envelope{Room: room, Payload: payload})
		if err == nil {
			return
		}
		utils.ErrorLogger.Errorf("relay publish failed, delivering locally: %v", err)
	}

	n := h.Deliver(room, payload)
	utils.InfoLogger.WithFields(logrus.Fields{
		"room":    room,
		"event":   msg.Event,
		"clients": n,
	}).Debug("emitted")
}

// Deliver writes payload to the local members of room and returns how many
// accepted it. A client whose buffer is full misses the message.
func (h *Hub) Deliver(room string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		if c.enqueue(payload) {
			delivered++
		}
	}
	return delivered
}
