package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	chatModel "tripagent/internal/model/chat"
	"tripagent/pkg/utils"
)

// streamChunkSize keeps streamed writes small enough that clients observe
// incremental delivery.
const streamChunkSize = 64

// Agent runs one chat turn.
type Agent interface {
	Chat(ctx context.Context, threadID, message string) (chatModel.ChatResponse, error)
	ClearData()
}

// Transcripts loads stored thread history.
type Transcripts interface {
	LoadTranscript(ctx context.Context, threadID string) ([]chatModel.Message, error)
}

// Handler serves the chat endpoints.
type Handler struct {
	agent       Agent
	transcripts Transcripts
}

// New creates the chat handler.
func New(agent Agent, transcripts Transcripts) *Handler {
	return &Handler{agent: agent, transcripts: transcripts}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", h.handleChat)
		r.Post("/stream", h.handleChatStream)
		r.Get("/history/{threadID}", h.handleHistory)
		r.Delete("/clear-data", h.handleClearData)
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	log.Printf("[chat] thread=%s message=%q", req.ThreadID, req.Message)

	resp, err := h.agent.Chat(r.Context(), req.ThreadID, req.Message)
	if err != nil {
		log.Printf("[chat] turn failed for thread=%s: %v", req.ThreadID, err)
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("error processing chat request: %v", err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleChatStream runs the same turn but delivers the response document as
// flushed chunks, so clients can render text while the body is in flight.
func (h *Handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	resp, err := h.agent.Chat(r.Context(), req.ThreadID, req.Message)
	if err != nil {
		log.Printf("[stream] turn failed for thread=%s: %v", req.ThreadID, err)
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("error processing chat request: %v", err))
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	utils.SetupStreamHeaders(w)
	for start := 0; start < len(body); start += streamChunkSize {
		end := start + streamChunkSize
		if end > len(body) {
			end = len(body)
		}
		utils.WriteChunk(w, flusher, body[start:end])
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	messages, err := h.transcripts.LoadTranscript(r.Context(), threadID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("error retrieving conversation history: %v", err))
		return
	}

	history := chatModel.HistoryResponse{
		ThreadID: threadID,
		Messages: make([]chatModel.HistoryMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		history.Messages = append(history.Messages, chatModel.HistoryMessage{Role: msg.Role, Content: msg.Content})
	}

	utils.RespondJSON(w, http.StatusOK, history)
}

func (h *Handler) handleClearData(w http.ResponseWriter, r *http.Request) {
	h.agent.ClearData()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "data store cleared"})
}

// decodeRequest validates the body and fills in a generated thread id when
// the client did not provide one.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (chatModel.ChatRequest, bool) {
	var req chatModel.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return chatModel.ChatRequest{}, false
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return chatModel.ChatRequest{}, false
	}

	if req.ThreadID == "" {
		req.ThreadID = "session-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	return req, true
}
