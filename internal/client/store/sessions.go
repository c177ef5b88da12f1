package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tripagent/internal/model/chat"
)

// SessionStore manages the client's session list and active-session pointer.
// Sessions are kept most-recent-first: new sessions are prepended and the
// order is never re-sorted on activity. Every mutation is written through to
// storage; write failures are logged and the in-memory state stays usable.
type SessionStore struct {
	storage  Storage
	sessions []chat.Session
	active   string
}

// NewSessionStore loads existing state from storage. Unreadable state is
// treated as "no prior state".
func NewSessionStore(storage Storage) *SessionStore {
	s := &SessionStore{storage: storage}

	if raw, ok := storage.Get(KeySessions); ok {
		if err := json.Unmarshal([]byte(raw), &s.sessions); err != nil {
			log.Printf("[store] discarding unreadable session list: %v", err)
			s.sessions = nil
		}
	}
	if active, ok := storage.Get(KeyActiveSession); ok {
		s.active = active
	}
	return s
}

// List returns the sessions, most recent first.
func (s *SessionStore) List() []chat.Session {
	out := make([]chat.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Create generates a new session, prepends it and makes it active.
func (s *SessionStore) Create() chat.Session {
	session := chat.Session{
		ID:        newSessionID(),
		Title:     chat.DefaultTitle,
		CreatedAt: time.Now(),
	}

	s.sessions = append([]chat.Session{session}, s.sessions...)
	s.active = session.ID
	s.persist()
	return session
}

// SetActive switches the active session pointer.
func (s *SessionStore) SetActive(id string) {
	s.active = id
	s.persist()
}

// ActiveID returns the active session id, if any.
func (s *SessionStore) ActiveID() (string, bool) {
	if s.active == "" {
		return "", false
	}
	return s.active, true
}

// Get looks a session up by id.
func (s *SessionStore) Get(id string) (chat.Session, bool) {
	for _, session := range s.sessions {
		if session.ID == id {
			return session, true
		}
	}
	return chat.Session{}, false
}

// SetTitle overwrites a session's title.
func (s *SessionStore) SetTitle(id, title string) {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].Title = title
			s.persist()
			return
		}
	}
}

// SetLastMessage records the most recent user message for the sidebar.
func (s *SessionStore) SetLastMessage(id, message string) {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].LastMessage = message
			s.persist()
			return
		}
	}
}

func (s *SessionStore) persist() {
	data, err := json.Marshal(s.sessions)
	if err == nil {
		if err := s.storage.Set(KeySessions, string(data)); err != nil {
			log.Printf("[store] failed to persist sessions: %v", err)
		}
	}
	if err := s.storage.Set(KeyActiveSession, s.active); err != nil {
		log.Printf("[store] failed to persist active session: %v", err)
	}
}

// newSessionID is time-based with a random suffix. The id doubles as the
// server-side thread id.
func newSessionID() string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix))
}
