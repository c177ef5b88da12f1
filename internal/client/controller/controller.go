// Package controller drives chat turns for the client. It owns the visible
// transcript, the loading flag that serializes turns, and the structured data
// snapshot backing the rendered cards. One controller serves one user; its
// methods are called from a single goroutine (the REPL loop).
package controller

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tripagent/internal/client/store"
	"tripagent/internal/client/transcript"
	chatModel "tripagent/internal/model/chat"
	"tripagent/internal/model/travel"
)

// apologyMessage replaces the assistant reply when a turn fails for any
// reason. The wording is fixed so tests and users see one stable message.
const apologyMessage = "Sorry, I encountered an error. Please try again."

// titleLimit is the cut-off for deriving a session title from the first
// message.
const titleLimit = 50

// Entry is one rendered transcript line. Roles are the display vocabulary
// (user/assistant), not the stored one (human/ai).
type Entry struct {
	ID      string
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// API is the backend surface the controller needs.
type API interface {
	Chat(ctx context.Context, message, threadID string) (chatModel.ChatResponse, error)
	ChatStream(ctx context.Context, message, threadID string, onChunk func(string)) (chatModel.ChatResponse, error)
	History(ctx context.Context, threadID string) (chatModel.HistoryResponse, error)
	ClearData(ctx context.Context) error
}

// Controller coordinates sessions, turns and the data snapshot.
type Controller struct {
	api      API
	sessions *store.SessionStore

	entries []Entry
	loading bool
	data    travel.DataStore
	nextID  int
}

// New creates a controller over the given API and session store.
func New(api API, sessions *store.SessionStore) *Controller {
	return &Controller{api: api, sessions: sessions}
}

// Transcript returns the entries of the active session, oldest first.
func (c *Controller) Transcript() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Loading reports whether a turn is in flight.
func (c *Controller) Loading() bool {
	return c.loading
}

// Data returns the structured results of the most recent successful turn.
func (c *Controller) Data() travel.DataStore {
	return c.data
}

// Sessions exposes the session store for the sidebar.
func (c *Controller) Sessions() *store.SessionStore {
	return c.sessions
}

// Send runs one buffered chat turn. Empty input and input during an in-flight
// turn are ignored. A failed turn appends the apology and leaves the data
// snapshot untouched.
func (c *Controller) Send(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" || c.loading {
		return
	}

	sessionID := c.beginTurn(message)

	resp, err := c.api.Chat(ctx, message, sessionID)

	if active, _ := c.sessions.ActiveID(); active != sessionID {
		// The user switched sessions mid-turn; this result belongs to a
		// transcript that is no longer on screen.
		log.Printf("[controller] discarding stale reply for session %s", sessionID)
		c.loading = false
		return
	}

	if err != nil {
		log.Printf("[controller] turn failed: %v", err)
		c.appendEntry(RoleAssistant, apologyMessage)
		c.loading = false
		return
	}

	c.appendEntry(RoleAssistant, transcript.Merge(resp.Response, resp.DataStore))
	c.data = resp.DataStore
	c.loading = false
}

// SendStream runs one streaming turn. An empty assistant entry is created up
// front and grown as chunks arrive; when the stream completes its content is
// replaced with the authoritative merged response.
func (c *Controller) SendStream(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" || c.loading {
		return
	}

	sessionID := c.beginTurn(message)
	placeholderID := c.appendEntry(RoleAssistant, "")

	resp, err := c.api.ChatStream(ctx, message, sessionID, func(chunk string) {
		if active, _ := c.sessions.ActiveID(); active != sessionID {
			return
		}
		c.appendToEntry(placeholderID, chunk)
	})

	if active, _ := c.sessions.ActiveID(); active != sessionID {
		log.Printf("[controller] discarding stale stream for session %s", sessionID)
		c.loading = false
		return
	}

	if err != nil {
		log.Printf("[controller] stream failed: %v", err)
		c.replaceEntry(placeholderID, apologyMessage)
		c.loading = false
		return
	}

	c.replaceEntry(placeholderID, transcript.Merge(resp.Response, resp.DataStore))
	c.data = resp.DataStore
	c.loading = false
}

// SwitchSession makes a session active and loads its stored transcript.
// History roles are mapped from the stored vocabulary to the display one; a
// load failure leaves the transcript empty rather than stale.
func (c *Controller) SwitchSession(ctx context.Context, sessionID string) {
	c.sessions.SetActive(sessionID)
	c.entries = nil
	c.data = travel.DataStore{}

	history, err := c.api.History(ctx, sessionID)
	if err != nil {
		log.Printf("[controller] failed to load history for %s: %v", sessionID, err)
		return
	}

	for _, msg := range history.Messages {
		c.appendEntry(displayRole(msg.Role), msg.Content)
	}
}

// ClearData drops the structured-data snapshot on both ends. The transcript
// and session list are untouched.
func (c *Controller) ClearData(ctx context.Context) error {
	if err := c.api.ClearData(ctx); err != nil {
		return err
	}
	c.data = travel.DataStore{}
	return nil
}

// NewSession creates and activates a fresh session with an empty transcript.
func (c *Controller) NewSession() chatModel.Session {
	session := c.sessions.Create()
	c.entries = nil
	c.data = travel.DataStore{}
	return session
}

// beginTurn ensures an active session exists, applies the first-message title
// rule, appends the user entry and raises the loading flag. It returns the
// session id captured for this turn.
func (c *Controller) beginTurn(message string) string {
	sessionID, ok := c.sessions.ActiveID()
	if !ok {
		sessionID = c.sessions.Create().ID
	}

	// The title is derived at most once per session. The session's own title
	// is the guard; an empty transcript is not proof of a first message (a
	// failed history load also leaves it empty).
	if session, ok := c.sessions.Get(sessionID); ok && session.Title == chatModel.DefaultTitle {
		c.sessions.SetTitle(sessionID, deriveTitle(message))
	}
	c.sessions.SetLastMessage(sessionID, message)

	c.appendEntry(RoleUser, message)
	c.loading = true
	return sessionID
}

func (c *Controller) appendEntry(role, content string) string {
	c.nextID++
	id := newEntryID(c.nextID)
	c.entries = append(c.entries, Entry{ID: id, Role: role, Content: content})
	return id
}

func (c *Controller) appendToEntry(id, chunk string) {
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Content += chunk
			return
		}
	}
}

func (c *Controller) replaceEntry(id, content string) {
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Content = content
			return
		}
	}
}

func newEntryID(n int) string {
	return fmt.Sprintf("entry-%06d", n)
}

// deriveTitle truncates the first message at titleLimit runes.
func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}

func displayRole(stored string) string {
	switch stored {
	case chatModel.RoleHuman:
		return RoleUser
	case chatModel.RoleAI:
		return RoleAssistant
	default:
		return stored
	}
}
