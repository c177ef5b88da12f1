package chat

import "tripagent/internal/model/travel"

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse is the buffered chat reply. The streaming endpoint emits the
// same JSON document, delivered as incremental chunks.
type ChatResponse struct {
	Response  string           `json:"response"`
	ThreadID  string           `json:"thread_id"`
	DataStore travel.DataStore `json:"data_store"`
}

// HistoryMessage carries the stored role vocabulary (human/ai) unchanged.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse is the body of GET /chat/history/{threadID}.
type HistoryResponse struct {
	ThreadID string           `json:"thread_id"`
	Messages []HistoryMessage `json:"messages"`
}
