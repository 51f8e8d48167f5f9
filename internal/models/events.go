package models

import "encoding/json"

type EventType string

const (
	// Client to server
	EventJoinMeeting  EventType = "join-meeting"
	EventLeaveMeeting EventType = "leave-meeting"

	// Server to client
	EventConnected     EventType = "connected"
	EventMeetingJoined EventType = "meeting-joined"
	EventUserJoined    EventType = "user-joined"
	EventUserLeft      EventType = "user-left"
	EventError         EventType = "error"

	// Both directions
	EventOffer        EventType = "offer"
	EventAnswer       EventType = "answer"
	EventICECandidate EventType = "ice-candidate"
	EventChatMessage  EventType = "chat-message"
)

// Envelope wraps every websocket frame in both directions. Payload stays
// raw JSON so signaling blobs pass through without re-encoding.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConnectedPayload struct {
	UserID string `json:"userId"`
}

type JoinMeetingPayload struct {
	MeetingCode string `json:"meetingCode"`
	UserName    string `json:"userName"`
}

type LeaveMeetingPayload struct {
	MeetingCode string `json:"meetingCode"`
}

// SignalPayload is the inbound shape for offer, answer and ice-candidate.
// Offers and answers carry SDP; candidates carry Candidate.
type SignalPayload struct {
	TargetID  string          `json:"targetId"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// SignalRelayPayload is the outbound shape delivered to the target peer.
type SignalRelayPayload struct {
	FromID    string          `json:"fromId"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type ChatMessagePayload struct {
	MeetingCode string      `json:"meetingCode"`
	Message     ChatMessage `json:"message"`
}

type MeetingJoinedPayload struct {
	MeetingCode  string        `json:"meetingCode"`
	Participants []Participant `json:"participants"`
}

type UserJoinedPayload struct {
	UserID       string        `json:"userId"`
	UserName     string        `json:"userName"`
	Participants []Participant `json:"participants"`
}

type UserLeftPayload struct {
	UserID       string        `json:"userId"`
	Participants []Participant `json:"participants"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
