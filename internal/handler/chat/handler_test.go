package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "tripagent/internal/model/chat"
	"tripagent/internal/model/travel"
)

type fakeAgent struct {
	lastThreadID string
	lastMessage  string
	resp         chatModel.ChatResponse
	err          error
	cleared      bool
}

func (f *fakeAgent) Chat(ctx context.Context, threadID, message string) (chatModel.ChatResponse, error) {
	f.lastThreadID = threadID
	f.lastMessage = message
	if f.err != nil {
		return chatModel.ChatResponse{}, f.err
	}
	resp := f.resp
	resp.ThreadID = threadID
	return resp, nil
}

func (f *fakeAgent) ClearData() { f.cleared = true }

type fakeTranscripts struct {
	messages []chatModel.Message
	err      error
}

func (f *fakeTranscripts) LoadTranscript(ctx context.Context, threadID string) ([]chatModel.Message, error) {
	return f.messages, f.err
}

func setupRouter(agent *fakeAgent, transcripts *fakeTranscripts) *chi.Mux {
	r := chi.NewRouter()
	New(agent, transcripts).RegisterRoutes(r)
	return r
}

func postChat(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatReturnsResponse(t *testing.T) {
	agent := &fakeAgent{resp: chatModel.ChatResponse{Response: "hello!"}}
	r := setupRouter(agent, &fakeTranscripts{})

	resp := postChat(r, "/chat/", chatModel.ChatRequest{Message: "hi", ThreadID: "session-1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body chatModel.ChatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Response != "hello!" || body.ThreadID != "session-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	r := setupRouter(&fakeAgent{}, &fakeTranscripts{})

	resp := postChat(r, "/chat/", chatModel.ChatRequest{Message: "   "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatGeneratesThreadIDWhenMissing(t *testing.T) {
	agent := &fakeAgent{resp: chatModel.ChatResponse{Response: "ok"}}
	r := setupRouter(agent, &fakeTranscripts{})

	resp := postChat(r, "/chat/", chatModel.ChatRequest{Message: "hi"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.HasPrefix(agent.lastThreadID, "session-") {
		t.Fatalf("expected generated session id, got %q", agent.lastThreadID)
	}
	if len(agent.lastThreadID) != len("session-")+12 {
		t.Fatalf("unexpected id length: %q", agent.lastThreadID)
	}
}

func TestChatAgentFailure(t *testing.T) {
	agent := &fakeAgent{err: errors.New("model offline")}
	r := setupRouter(agent, &fakeTranscripts{})

	resp := postChat(r, "/chat/", chatModel.ChatRequest{Message: "hi", ThreadID: "session-1"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestChatStreamDeliversFullDocument(t *testing.T) {
	agent := &fakeAgent{resp: chatModel.ChatResponse{
		Response: strings.Repeat("long reply ", 30),
		DataStore: travel.DataStore{
			News: map[string]travel.NewsBatch{"q": {Articles: []travel.NewsArticle{{Title: "t"}}}},
		},
	}}
	r := setupRouter(agent, &fakeTranscripts{})

	resp := postChat(r, "/chat/stream", chatModel.ChatRequest{Message: "hi", ThreadID: "session-1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body chatModel.ChatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("streamed body should reassemble into the response document: %v", err)
	}
	if body.Response != agent.resp.Response {
		t.Fatal("streamed response text differs from the buffered one")
	}
	if len(body.DataStore.News) != 1 {
		t.Fatal("data store lost in streaming")
	}
}

func TestHistoryMapsMessages(t *testing.T) {
	transcripts := &fakeTranscripts{messages: []chatModel.Message{
		{Role: chatModel.RoleHuman, Content: "hi"},
		{Role: chatModel.RoleAI, Content: "hello"},
	}}
	r := setupRouter(&fakeAgent{}, transcripts)

	req := httptest.NewRequest(http.MethodGet, "/chat/history/session-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body chatModel.HistoryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ThreadID != "session-1" {
		t.Fatalf("unexpected thread id %q", body.ThreadID)
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != chatModel.RoleHuman {
		t.Fatalf("unexpected messages: %+v", body.Messages)
	}
}

func TestHistoryEmptyThread(t *testing.T) {
	r := setupRouter(&fakeAgent{}, &fakeTranscripts{})

	req := httptest.NewRequest(http.MethodGet, "/chat/history/session-unknown", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body chatModel.HistoryResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", body.Messages)
	}
}

func TestClearData(t *testing.T) {
	agent := &fakeAgent{}
	r := setupRouter(agent, &fakeTranscripts{})

	req := httptest.NewRequest(http.MethodDelete, "/chat/clear-data", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !agent.cleared {
		t.Fatal("agent data should be cleared")
	}
}
