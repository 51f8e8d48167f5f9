package models

import "time"

// Meeting is the durable record for one meeting code. Participants are kept
// in join order (display order on clients); messages are append-only.
type Meeting struct {
	Code         string        `json:"meetingCode"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
	Participants []Participant `json:"participants"`
	Messages     []ChatMessage `json:"messages"`
}

// Participant is one active connection's membership in a meeting.
// The ID is the transport-assigned connection identifier.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ChatMessage is one chat utterance. Timestamp is Unix milliseconds and is
// assigned by the server when the client omits it.
type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// RemoveParticipant deletes the entry for connID, preserving join order.
// Returns false if no entry matched.
func (m *Meeting) RemoveParticipant(connID string) bool {
	for i, p := range m.Participants {
		if p.ID == connID {
			m.Participants = append(m.Participants[:i], m.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// HasParticipant reports whether connID currently appears in the list.
func (m *Meeting) HasParticipant(connID string) bool {
	for _, p := range m.Participants {
		if p.ID == connID {
			return true
		}
	}
	return false
}
