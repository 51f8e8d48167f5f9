package websocket

import (
	"encoding/json"
	"sync"
	"testing"

	"meet-app/internal/models"
)

func newHubClient(id string) *Client {
	return &Client{id: id, send: make(chan []byte, 8)}
}

func takeEnvelope(t *testing.T, c *Client) models.Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		return env
	default:
		t.Fatal("expected a frame, send channel is empty")
		return models.Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	default:
	}
}

func TestSendToConnection(t *testing.T) {
	hub := NewHub()
	a := newHubClient("conn-a")
	hub.Register(a)

	hub.SendToConnection("conn-a", models.EventConnected, models.ConnectedPayload{UserID: "conn-a"})

	env := takeEnvelope(t, a)
	if env.Type != models.EventConnected {
		t.Errorf("Type = %q, want %q", env.Type, models.EventConnected)
	}
	var p models.ConnectedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if p.UserID != "conn-a" {
		t.Errorf("UserID = %q, want conn-a", p.UserID)
	}
}

func TestSendToUnknownConnectionIsSilent(t *testing.T) {
	hub := NewHub()
	// Must not panic or block
	hub.SendToConnection("conn-gone", models.EventOffer, models.SignalRelayPayload{FromID: "x"})
}

func TestBroadcastToRoomExcludes(t *testing.T) {
	hub := NewHub()
	a := newHubClient("conn-a")
	b := newHubClient("conn-b")
	c := newHubClient("conn-c")
	for _, cl := range []*Client{a, b, c} {
		hub.Register(cl)
	}
	hub.Subscribe("482913", "conn-a")
	hub.Subscribe("482913", "conn-b")
	// conn-c is registered but not in the room

	hub.BroadcastToRoom("482913", models.EventUserJoined, models.UserJoinedPayload{UserID: "conn-b"}, "conn-b")

	env := takeEnvelope(t, a)
	if env.Type != models.EventUserJoined {
		t.Errorf("Type = %q, want %q", env.Type, models.EventUserJoined)
	}
	assertNoFrame(t, b)
	assertNoFrame(t, c)
}

func TestSubscribeUnregisteredConnIsNoOp(t *testing.T) {
	hub := NewHub()
	hub.Subscribe("482913", "conn-gone")

	a := newHubClient("conn-a")
	hub.Register(a)
	hub.Subscribe("482913", "conn-a")
	hub.BroadcastToRoom("482913", models.EventUserLeft, models.UserLeftPayload{UserID: "x"}, "")

	takeEnvelope(t, a)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newHubClient("conn-a")
	hub.Register(a)
	hub.Subscribe("482913", "conn-a")
	hub.Unsubscribe("482913", "conn-a")

	hub.BroadcastToRoom("482913", models.EventChatMessage, models.ChatMessage{Content: "hi"}, "")
	assertNoFrame(t, a)
}

func TestUnregisterCleansRoomsAndClosesSend(t *testing.T) {
	hub := NewHub()
	a := newHubClient("conn-a")
	b := newHubClient("conn-b")
	hub.Register(a)
	hub.Register(b)
	hub.Subscribe("482913", "conn-a")
	hub.Subscribe("482913", "conn-b")

	hub.Unregister(a)

	hub.BroadcastToRoom("482913", models.EventChatMessage, models.ChatMessage{Content: "hi"}, "")
	takeEnvelope(t, b)

	if _, ok := <-a.send; ok {
		t.Error("unregistered client's send channel should be closed")
	}

	// Double unregister must not close twice
	hub.Unregister(a)
}

func TestSendToConnectionRacesUnregister(t *testing.T) {
	// Sends targeting a connection must never hit its send channel after
	// Unregister has closed it, no matter how the goroutines interleave.
	for i := 0; i < 200; i++ {
		hub := NewHub()
		c := newHubClient("conn-a")
		hub.Register(c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.SendToConnection("conn-a", models.EventChatMessage, models.ChatMessage{Content: "x"})
			}
		}()
		go func() {
			defer wg.Done()
			hub.Unregister(c)
		}()
		wg.Wait()
	}
}

func TestSlowClientFramesAreDropped(t *testing.T) {
	hub := NewHub()
	a := &Client{id: "conn-a", send: make(chan []byte, 1)}
	hub.Register(a)
	hub.Subscribe("482913", "conn-a")

	hub.BroadcastToRoom("482913", models.EventChatMessage, models.ChatMessage{Content: "one"}, "")
	// Buffer is full now; this frame is dropped instead of blocking
	hub.BroadcastToRoom("482913", models.EventChatMessage, models.ChatMessage{Content: "two"}, "")

	takeEnvelope(t, a)
	assertNoFrame(t, a)
}
