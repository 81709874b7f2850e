// Package conversation persists the chat transcript so athletes can
// revisit past coaching exchanges. Writes are best-effort from the
// caller's point of view: a failed append is logged, never surfaced to
// the athlete mid-conversation.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the conversation does not exist or belongs to a
// different athlete.
var ErrNotFound = errors.New("conversation not found")

// Message is one stored turn of a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes conversation history in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// AppendTurn records a completed user/assistant exchange in one
// transaction, creating the conversation row on first use.
func (s *Store) AppendTurn(ctx context.Context, conversationID uuid.UUID, athleteID, userContent, assistantContent string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, athlete_id)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET updated_at = now()
	`, conversationID, athleteID)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO conversation_messages (conversation_id, role, content)
		VALUES ($1, 'user', $2)
	`, conversationID, userContent)
	batch.Queue(`
		INSERT INTO conversation_messages (conversation_id, role, content)
		VALUES ($1, 'assistant', $2)
	`, conversationID, assistantContent)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Messages returns a conversation's turns in order. Lookups are scoped
// to the owning athlete so one athlete can never read another's history.
func (s *Store) Messages(ctx context.Context, conversationID uuid.UUID, athleteID string) ([]Message, error) {
	var owner string
	err := s.pool.QueryRow(ctx, `
		SELECT athlete_id FROM conversations WHERE id = $1
	`, conversationID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, conversationID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	if owner != athleteID {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, conversationID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}
