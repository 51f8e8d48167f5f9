package handlers

import "github.com/go-chi/chi/v5"

// MountRoutes registers the meeting API and the websocket endpoint.
func MountRoutes(r chi.Router, mh *MeetingHandlers, wh *WebSocketHandlers) {
	r.Post("/api/meetings", mh.CreateMeeting)
	r.Get("/api/meetings/{code}", mh.GetMeeting)
	r.Get("/api/meetings/{code}/messages", mh.GetMessages)
	r.Get("/ws", wh.HandleWebSocket)
}
