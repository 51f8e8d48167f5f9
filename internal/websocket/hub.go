package websocket

import (
	"encoding/json"
	"sync"

	"meet-app/internal/models"
	"meet-app/pkg/logger"
)

// Hub is the room broadcaster: it tracks every live connection and the set
// of connections per meeting code, and delivers events fire-and-forget.
// It implements signaling.Broadcaster.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Client
	rooms map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*Client),
		rooms: make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
}

// Unregister drops the connection from the hub and from any room still
// holding it, and closes its send channel. No-op if already gone.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c.id]; !ok {
		return
	}
	delete(h.conns, c.id)

	for code, room := range h.rooms {
		if _, ok := room[c.id]; ok {
			delete(room, c.id)
			if len(room) == 0 {
				delete(h.rooms, code)
			}
		}
	}

	close(c.send)
}

// Subscribe adds the connection to the room for meetingCode. No-op if the
// connection is no longer registered (it raced a disconnect).
func (h *Hub) Subscribe(meetingCode, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}

	room, ok := h.rooms[meetingCode]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[meetingCode] = room
	}
	room[connID] = client
}

// Unsubscribe removes the connection from the room, deleting the room once
// it is empty. No-op if absent.
func (h *Hub) Unsubscribe(meetingCode, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[meetingCode]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(h.rooms, meetingCode)
	}
}

// SendToConnection delivers one event to a single connection. Unknown
// connection identifiers are silently ignored, matching best-effort
// signaling semantics.
func (h *Hub) SendToConnection(connID string, event models.EventType, payload interface{}) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		logger.Error("Error marshaling %s event: %v", event, err)
		return
	}

	// Hold the lock across the enqueue: Unregister closes the send
	// channel under the write lock, so releasing early would race a
	// disconnecting target into a send on a closed channel.
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}
	client.enqueue(data)
}

// BroadcastToRoom delivers one event to every connection in the room,
// optionally skipping excludeID. Delivery is fire-and-forget.
func (h *Hub) BroadcastToRoom(meetingCode string, event models.EventType, payload interface{}, excludeID string) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		logger.Error("Error marshaling %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for connID, client := range h.rooms[meetingCode] {
		if connID == excludeID {
			continue
		}
		client.enqueue(data)
	}
}

func encodeEvent(event models.EventType, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.Envelope{Type: event, Payload: encoded})
}
