package websocket

import (
	"context"
	"encoding/json"
	"time"

	"meet-app/internal/models"
	"meet-app/internal/signaling"
	"meet-app/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client owns one websocket connection. The read pump decodes inbound
// envelopes and hands them to the coordinator; the write pump drains the
// send channel the hub enqueues into.
type Client struct {
	id          string
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	coordinator *signaling.Coordinator
}

func NewClient(hub *Hub, conn *websocket.Conn, coordinator *signaling.Coordinator) *Client {
	return &Client{
		id:          uuid.NewString(),
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		coordinator: coordinator,
	}
}

// ID returns the transport-assigned connection identifier.
func (c *Client) ID() string {
	return c.id
}

// enqueue hands a frame to the write pump without blocking. Frames to a
// slow client are dropped rather than stalling the sender.
func (c *Client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		logger.Debug("Dropping frame for slow connection %s", c.id)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.coordinator.Disconnect(context.Background(), c.id)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	// Set read deadline and pong handler for connection health
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			break
		}

		var env models.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			logger.Debug("Ignoring malformed frame from %s: %v", c.id, err)
			continue
		}

		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env models.Envelope) {
	ctx := context.Background()

	switch env.Type {
	case models.EventJoinMeeting:
		var p models.JoinMeetingPayload
		if !decodePayload(c.id, env, &p) {
			return
		}
		_ = c.coordinator.Join(ctx, c.id, p.MeetingCode, p.UserName)

	case models.EventLeaveMeeting:
		var p models.LeaveMeetingPayload
		if !decodePayload(c.id, env, &p) {
			return
		}
		_ = c.coordinator.Leave(ctx, c.id, p.MeetingCode)

	case models.EventOffer:
		var p models.SignalPayload
		if !decodePayload(c.id, env, &p) {
			return
		}
		c.coordinator.RelayOffer(c.id, p)

	case models.EventAnswer:
		var p models.SignalPayload
		if !decodePayload(c.id, env, &p) {
			return
		}
		c.coordinator.RelayAnswer(c.id, p)

	case models.EventICECandidate:
		var p models.SignalPayload
		if !decodePayload(c.id, env, &p) {
			return
		}
		c.coordinator.RelayIceCandidate(c.id, p)

	case models.EventChatMessage:
		var p models.ChatMessagePayload
		if !decodePayload(c.id, env, &p) {
			return
		}
		_ = c.coordinator.SendChat(ctx, c.id, p.MeetingCode, p.Message)

	default:
		logger.Debug("Unknown event type %q from %s", env.Type, c.id)
	}
}

func decodePayload(connID string, env models.Envelope, dst interface{}) bool {
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		logger.Debug("Ignoring malformed %s payload from %s: %v", env.Type, connID, err)
		return false
	}
	return true
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
