package database

import (
	"context"
	"sync"
	"time"

	"meet-app/internal/models"
)

// MemoryDB is an in-process MeetingStore used by tests and store-less
// development runs. It deep-copies on every read and write so callers
// never share slices with the stored records.
type MemoryDB struct {
	mu       sync.RWMutex
	meetings map[string]*models.Meeting
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{meetings: make(map[string]*models.Meeting)}
}

func (db *MemoryDB) Close() error {
	return nil
}

func (db *MemoryDB) Create(ctx context.Context, code string) (*models.Meeting, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.meetings[code]; exists {
		return nil, ErrDuplicateCode
	}

	meeting := emptyMeeting(code)
	db.meetings[code] = meeting
	return cloneMeeting(meeting), nil
}

func (db *MemoryDB) GetOrCreate(ctx context.Context, code string) (*models.Meeting, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	meeting, exists := db.meetings[code]
	if !exists {
		meeting = emptyMeeting(code)
		db.meetings[code] = meeting
	}
	return cloneMeeting(meeting), nil
}

func (db *MemoryDB) FindByCode(ctx context.Context, code string) (*models.Meeting, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	meeting, exists := db.meetings[code]
	if !exists {
		return nil, ErrMeetingNotFound
	}
	return cloneMeeting(meeting), nil
}

func (db *MemoryDB) Save(ctx context.Context, meeting *models.Meeting) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := cloneMeeting(meeting)
	stored.LastActivity = time.Now().UTC()
	if existing, ok := db.meetings[meeting.Code]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	db.meetings[meeting.Code] = stored
	return nil
}

func (db *MemoryDB) AppendMessage(ctx context.Context, code string, msg *models.ChatMessage) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	meeting, exists := db.meetings[code]
	if !exists {
		return ErrMeetingNotFound
	}
	meeting.Messages = append(meeting.Messages, *msg)
	meeting.LastActivity = time.Now().UTC()
	return nil
}

func (db *MemoryDB) DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var deleted int64
	for code, meeting := range db.meetings {
		if meeting.LastActivity.Before(cutoff) {
			delete(db.meetings, code)
			deleted++
		}
	}
	return deleted, nil
}

func emptyMeeting(code string) *models.Meeting {
	now := time.Now().UTC()
	return &models.Meeting{
		Code:         code,
		CreatedAt:    now,
		LastActivity: now,
		Participants: []models.Participant{},
		Messages:     []models.ChatMessage{},
	}
}

func cloneMeeting(m *models.Meeting) *models.Meeting {
	clone := &models.Meeting{
		Code:         m.Code,
		CreatedAt:    m.CreatedAt,
		LastActivity: m.LastActivity,
		Participants: make([]models.Participant, len(m.Participants)),
		Messages:     make([]models.ChatMessage, len(m.Messages)),
	}
	copy(clone.Participants, m.Participants)
	copy(clone.Messages, m.Messages)
	return clone
}
