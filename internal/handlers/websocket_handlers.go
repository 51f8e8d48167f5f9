package handlers

import (
	"net/http"

	"meet-app/internal/models"
	"meet-app/internal/signaling"
	ws "meet-app/internal/websocket"
	"meet-app/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	hub         *ws.Hub
	coordinator *signaling.Coordinator
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(hub *ws.Hub, coordinator *signaling.Coordinator) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, h.coordinator)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	// Tell the client its connection identifier; peers address signaling
	// frames to it.
	h.hub.SendToConnection(client.ID(), models.EventConnected, models.ConnectedPayload{
		UserID: client.ID(),
	})

	logger.Debug("New client connected: %s", client.ID())
}
