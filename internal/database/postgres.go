package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meet-app/internal/models"
	"meet-app/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// InitSchema creates the meetings table if it does not exist. One row per
// meeting code; participants and messages live in jsonb columns because the
// store contract is whole-record-by-code, not relational.
func (db *PostgresDB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS meetings (
			code          TEXT PRIMARY KEY,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			participants  JSONB NOT NULL DEFAULT '[]'::jsonb,
			messages      JSONB NOT NULL DEFAULT '[]'::jsonb
		)`

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create meetings table: %w", err)
	}
	return nil
}

func (db *PostgresDB) Create(ctx context.Context, code string) (*models.Meeting, error) {
	query := `
		INSERT INTO meetings (code, created_at, last_activity, participants, messages)
		VALUES ($1, NOW(), NOW(), '[]'::jsonb, '[]'::jsonb)
		ON CONFLICT (code) DO NOTHING
		RETURNING code, created_at, last_activity, participants, messages`

	meeting, err := db.scanMeeting(db.pool.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateCode
	}
	return meeting, err
}

func (db *PostgresDB) GetOrCreate(ctx context.Context, code string) (*models.Meeting, error) {
	query := `
		INSERT INTO meetings (code, created_at, last_activity, participants, messages)
		VALUES ($1, NOW(), NOW(), '[]'::jsonb, '[]'::jsonb)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING code, created_at, last_activity, participants, messages`

	return db.scanMeeting(db.pool.QueryRow(ctx, query, code))
}

func (db *PostgresDB) FindByCode(ctx context.Context, code string) (*models.Meeting, error) {
	query := `
		SELECT code, created_at, last_activity, participants, messages
		FROM meetings WHERE code = $1`

	meeting, err := db.scanMeeting(db.pool.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMeetingNotFound
	}
	return meeting, err
}

func (db *PostgresDB) Save(ctx context.Context, meeting *models.Meeting) error {
	participants, err := marshalJSONArray(meeting.Participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}
	messages, err := marshalJSONArray(meeting.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	query := `
		INSERT INTO meetings (code, created_at, last_activity, participants, messages)
		VALUES ($1, $2, NOW(), $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			participants = EXCLUDED.participants,
			messages = EXCLUDED.messages,
			last_activity = NOW()`

	_, err = db.pool.Exec(ctx, query, meeting.Code, meeting.CreatedAt, participants, messages)
	return err
}

func (db *PostgresDB) AppendMessage(ctx context.Context, code string, msg *models.ChatMessage) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	query := `
		UPDATE meetings
		SET messages = messages || $2::jsonb, last_activity = NOW()
		WHERE code = $1`

	tag, err := db.pool.Exec(ctx, query, code, encoded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

func (db *PostgresDB) DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM meetings WHERE last_activity < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (db *PostgresDB) scanMeeting(row pgx.Row) (*models.Meeting, error) {
	var (
		meeting      models.Meeting
		participants []byte
		messages     []byte
	)

	err := row.Scan(&meeting.Code, &meeting.CreatedAt, &meeting.LastActivity, &participants, &messages)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(participants, &meeting.Participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}
	if err := json.Unmarshal(messages, &meeting.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	if meeting.Participants == nil {
		meeting.Participants = []models.Participant{}
	}
	if meeting.Messages == nil {
		meeting.Messages = []models.ChatMessage{}
	}

	return &meeting, nil
}

// marshalJSONArray encodes a slice for a jsonb column, mapping nil slices
// to [] so the append operator keeps working.
func marshalJSONArray(v interface{}) ([]byte, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(encoded) == "null" {
		return []byte("[]"), nil
	}
	return encoded, nil
}
