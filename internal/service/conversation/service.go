// Package conversation manages thread transcripts on top of the checkpoint
// store. The latest checkpoint is the authoritative history for a thread.
package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripagent/internal/checkpoint"
	"tripagent/internal/model/chat"
)

// Service loads and extends per-thread transcripts.
type Service struct {
	checkpoints *checkpoint.Store
}

// NewService wraps the checkpoint store.
func NewService(checkpoints *checkpoint.Store) *Service {
	return &Service{checkpoints: checkpoints}
}

// LoadTranscript returns the stored messages for the thread. Unknown threads
// yield an empty transcript.
func (s *Service) LoadTranscript(ctx context.Context, threadID string) ([]chat.Message, error) {
	if threadID == "" {
		return nil, fmt.Errorf("thread id is required")
	}
	return s.checkpoints.Latest(ctx, threadID)
}

// AppendTurn records one completed user/assistant exchange and persists a new
// checkpoint. It returns the updated transcript.
func (s *Service) AppendTurn(ctx context.Context, threadID, userMessage, assistantMessage string) ([]chat.Message, error) {
	messages, err := s.LoadTranscript(ctx, threadID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	messages = append(messages,
		chat.Message{ID: uuid.NewString(), ThreadID: threadID, Role: chat.RoleHuman, Content: userMessage, CreatedAt: now},
		chat.Message{ID: uuid.NewString(), ThreadID: threadID, Role: chat.RoleAI, Content: assistantMessage, CreatedAt: now},
	)

	if err := s.checkpoints.Put(ctx, threadID, messages); err != nil {
		return nil, err
	}
	return messages, nil
}
