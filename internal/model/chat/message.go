package chat

import "time"

// Stored role vocabulary. The history endpoint exposes these verbatim; the
// client translates them into its two-value user/assistant enum.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Message is one persisted turn half inside a thread.
type Message struct {
	ID        string    `json:"id,omitempty"`
	ThreadID  string    `json:"threadId,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
