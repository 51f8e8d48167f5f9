package database

import (
	"context"
	"errors"
	"time"

	"meet-app/internal/models"
)

var (
	// ErrMeetingNotFound marks reads for a code with no record. Callers
	// treat it as a defined no-op, not a failure.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrDuplicateCode marks a Create against a code already in use.
	ErrDuplicateCode = errors.New("meeting code already in use")
)

// MeetingStore is the persistence contract the signaling core depends on.
// Records are keyed by meeting code; Save and AppendMessage bump the
// record's last-activity timestamp as a side effect.
type MeetingStore interface {
	// Create inserts an empty meeting, failing with ErrDuplicateCode if
	// the code is taken.
	Create(ctx context.Context, code string) (*models.Meeting, error)

	// GetOrCreate returns the meeting for code, inserting an empty one
	// if none exists. This is the join-time auto-creation policy.
	GetOrCreate(ctx context.Context, code string) (*models.Meeting, error)

	// FindByCode is the non-creating read, returning ErrMeetingNotFound
	// for unknown codes.
	FindByCode(ctx context.Context, code string) (*models.Meeting, error)

	// Save upserts the full participant and message state for the meeting.
	Save(ctx context.Context, meeting *models.Meeting) error

	// AppendMessage appends one message to the meeting's history without
	// rewriting it, returning ErrMeetingNotFound for unknown codes.
	AppendMessage(ctx context.Context, code string, msg *models.ChatMessage) error

	// DeleteInactive removes meetings whose last activity predates cutoff
	// and reports how many were removed.
	DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
