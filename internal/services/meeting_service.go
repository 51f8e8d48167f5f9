package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"meet-app/internal/database"
	"meet-app/internal/models"
)

// ErrCodeExhausted is returned when code generation keeps colliding past
// the configured attempt budget.
var ErrCodeExhausted = errors.New("could not allocate a unique meeting code")

// MeetingService is the contract exposed to the HTTP layer: meeting
// creation with a unique shareable code, plus read-only meeting queries.
type MeetingService struct {
	store       database.MeetingStore
	codeLength  int
	maxAttempts int
}

func NewMeetingService(store database.MeetingStore, codeLength, maxAttempts int) *MeetingService {
	return &MeetingService{
		store:       store,
		codeLength:  codeLength,
		maxAttempts: maxAttempts,
	}
}

// CreateMeeting persists an empty meeting under a freshly generated code.
// Collisions are retried with a new code up to the attempt budget; the
// store's uniqueness check is the arbiter.
func (s *MeetingService) CreateMeeting(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := generateCode(s.codeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate meeting code: %w", err)
		}

		_, err = s.store.Create(ctx, code)
		if errors.Is(err, database.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", ErrCodeExhausted
}

// GetMeetingInfo returns the meeting record, or database.ErrMeetingNotFound.
func (s *MeetingService) GetMeetingInfo(ctx context.Context, code string) (*models.Meeting, error) {
	return s.store.FindByCode(ctx, code)
}

// GetMessages returns the meeting's chat history, or database.ErrMeetingNotFound.
func (s *MeetingService) GetMessages(ctx context.Context, code string) ([]models.ChatMessage, error) {
	meeting, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return meeting.Messages, nil
}

// generateCode produces a numeric code of the given length with no leading
// zero, e.g. "482913" for length 6.
func generateCode(length int) (string, error) {
	min := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Mul(min, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, min).String(), nil
}
