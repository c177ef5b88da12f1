package chat

import "time"

// Session is one conversation thread. The client-generated session id is
// reused verbatim as the server-side thread id; there is no mapping table.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"createdAt"`
	LastMessage string    `json:"lastMessage,omitempty"`
}

// DefaultTitle is assigned to a fresh session until its first user message.
const DefaultTitle = "New Chat"
