// Package checkpoint persists conversation state per thread. Each turn is
// saved as a full snapshot of the thread's messages; the newest snapshot is
// the authoritative history.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tripagent/internal/model/chat"
)

// Store reads and writes checkpoints in the shared SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type storedMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Put saves a new checkpoint holding the full message list for the thread,
// creating the conversation row on first contact.
func (s *Store) Put(ctx context.Context, threadID string, messages []chat.Message) error {
	if threadID == "" {
		return errors.New("thread id is required")
	}

	snapshot := make([]storedMessage, 0, len(messages))
	for _, msg := range messages {
		snapshot = append(snapshot, storedMessage{Type: msg.Role, Content: msg.Content})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (thread_id) VALUES (?) ON CONFLICT(thread_id) DO NOTHING`,
		threadID,
	); err != nil {
		return fmt.Errorf("failed to ensure conversation: %w", err)
	}

	parent, err := s.latestCheckpointID(ctx, tx, threadID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (thread_id, checkpoint_id, parent_checkpoint_id, data, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		threadID, uuid.NewString(), parent, string(data), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	log.Printf("[checkpoint] saved snapshot for thread=%s messages=%d", threadID, len(messages))
	return nil
}

// Latest returns the newest checkpoint's messages for the thread. An unknown
// thread yields an empty history, not an error.
func (s *Store) Latest(ctx context.Context, threadID string) ([]chat.Message, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM checkpoints WHERE thread_id = ? ORDER BY id DESC LIMIT 1`,
		threadID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var snapshot []storedMessage
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	messages := make([]chat.Message, 0, len(snapshot))
	for _, msg := range snapshot {
		messages = append(messages, chat.Message{ThreadID: threadID, Role: msg.Type, Content: msg.Content})
	}
	return messages, nil
}

// Count returns the number of checkpoints stored for the thread.
func (s *Store) Count(ctx context.Context, threadID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checkpoints WHERE thread_id = ?`, threadID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count checkpoints: %w", err)
	}
	return count, nil
}

func (s *Store) latestCheckpointID(ctx context.Context, tx *sql.Tx, threadID string) (sql.NullString, error) {
	var id sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT checkpoint_id FROM checkpoints WHERE thread_id = ? ORDER BY id DESC LIMIT 1`,
		threadID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.NullString{}, nil
	}
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to resolve parent checkpoint: %w", err)
	}
	return id, nil
}
