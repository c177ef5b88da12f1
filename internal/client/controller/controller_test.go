package controller

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tripagent/internal/client/store"
	"tripagent/internal/client/transcript"
	chatModel "tripagent/internal/model/chat"
	"tripagent/internal/model/travel"
)

type fakeAPI struct {
	chatResp    chatModel.ChatResponse
	chatErr     error
	chunks      []string
	streamErr   error
	history     chatModel.HistoryResponse
	historyErr  error
	clearCalled bool
	clearErr    error

	// onChat runs during Chat, before it returns. Tests use it to switch
	// sessions mid-turn.
	onChat func()

	// beforeStreamDone runs after all chunks were delivered, before
	// ChatStream returns. Tests use it to observe the in-flight transcript.
	beforeStreamDone func()
}

func (f *fakeAPI) Chat(ctx context.Context, message, threadID string) (chatModel.ChatResponse, error) {
	if f.onChat != nil {
		f.onChat()
	}
	if f.chatErr != nil {
		return chatModel.ChatResponse{}, f.chatErr
	}
	resp := f.chatResp
	if resp.ThreadID == "" {
		resp.ThreadID = threadID
	}
	return resp, nil
}

func (f *fakeAPI) ChatStream(ctx context.Context, message, threadID string, onChunk func(string)) (chatModel.ChatResponse, error) {
	for _, chunk := range f.chunks {
		onChunk(chunk)
	}
	if f.beforeStreamDone != nil {
		f.beforeStreamDone()
	}
	if f.streamErr != nil {
		return chatModel.ChatResponse{}, f.streamErr
	}
	resp := f.chatResp
	if resp.ThreadID == "" {
		resp.ThreadID = threadID
	}
	return resp, nil
}

func (f *fakeAPI) History(ctx context.Context, threadID string) (chatModel.HistoryResponse, error) {
	if f.historyErr != nil {
		return chatModel.HistoryResponse{}, f.historyErr
	}
	return f.history, nil
}

func (f *fakeAPI) ClearData(ctx context.Context) error {
	f.clearCalled = true
	return f.clearErr
}

func newController(api API) *Controller {
	return New(api, store.NewSessionStore(store.NewMemoryStorage()))
}

func TestSendCreatesSessionWithDerivedTitle(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{Response: "Hi there!"}}
	c := newController(api)

	c.Send(context.Background(), "plan a weekend trip to goa")

	sessions := c.Sessions().List()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Title != "plan a weekend trip to goa" {
		t.Fatalf("unexpected title %q", sessions[0].Title)
	}

	entries := c.Transcript()
	if len(entries) != 2 {
		t.Fatalf("expected user+assistant entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[1].Role != RoleAssistant {
		t.Fatalf("unexpected roles %q, %q", entries[0].Role, entries[1].Role)
	}
	if c.Loading() {
		t.Fatal("loading flag should be cleared after the turn")
	}
}

func TestSendTruncatesLongTitle(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{Response: "ok"}}
	c := newController(api)

	message := strings.Repeat("a", 60)
	c.Send(context.Background(), message)

	title := c.Sessions().List()[0].Title
	if title != strings.Repeat("a", 50)+"..." {
		t.Fatalf("unexpected truncated title %q (len %d)", title, len(title))
	}
}

func TestTitleSetOnlyOnFirstMessage(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{Response: "ok"}}
	c := newController(api)

	c.Send(context.Background(), "first message")
	c.Send(context.Background(), "second message")

	if title := c.Sessions().List()[0].Title; title != "first message" {
		t.Fatalf("title should not change after first message, got %q", title)
	}
}

func TestTitleKeptWhenHistoryLoadFailsOnSwitch(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{Response: "ok"}}
	c := newController(api)

	c.Send(context.Background(), "first message")
	session := c.Sessions().List()[0]

	// A failed history load leaves the transcript empty; that must not make
	// the next send look like a first message.
	api.historyErr = errors.New("offline")
	c.SwitchSession(context.Background(), session.ID)
	api.historyErr = nil
	c.Send(context.Background(), "second message")

	if title := c.Sessions().List()[0].Title; title != "first message" {
		t.Fatalf("title should survive a failed history load, got %q", title)
	}
}

func TestSendIgnoresEmptyInput(t *testing.T) {
	c := newController(&fakeAPI{})

	c.Send(context.Background(), "   ")

	if len(c.Transcript()) != 0 {
		t.Fatal("whitespace-only input should be a no-op")
	}
	if len(c.Sessions().List()) != 0 {
		t.Fatal("no session should be created")
	}
}

func TestSendFailureAppendsApologyAndKeepsData(t *testing.T) {
	okStore := travel.DataStore{
		News: map[string]travel.NewsBatch{"goa": {Articles: []travel.NewsArticle{{Title: "x"}}}},
	}
	api := &fakeAPI{chatResp: chatModel.ChatResponse{Response: "ok", DataStore: okStore}}
	c := newController(api)

	c.Send(context.Background(), "news about goa")
	api.chatErr = errors.New("boom")
	c.Send(context.Background(), "and flights?")

	entries := c.Transcript()
	last := entries[len(entries)-1]
	if last.Role != RoleAssistant || last.Content != apologyMessage {
		t.Fatalf("expected apology, got %q", last.Content)
	}
	if c.Loading() {
		t.Fatal("loading flag should be cleared after a failed turn")
	}
	if len(c.Data().News) != 1 {
		t.Fatal("failed turn must not touch the data snapshot")
	}
}

func TestSendMergesDataIntoAssistantEntry(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{
		Response: "Found hotels!",
		DataStore: travel.DataStore{
			Hotels: map[string]travel.HotelBatch{
				"goa": {Properties: []travel.Hotel{{Name: "Beach Stay"}}},
			},
		},
	}}
	c := newController(api)

	c.Send(context.Background(), "hotels in goa")

	entries := c.Transcript()
	content := entries[len(entries)-1].Content
	if !strings.Contains(content, transcript.HotelMarker) {
		t.Fatalf("assistant entry should embed hotel data: %q", content)
	}
	d := transcript.Decompose(content)
	if len(d.Hotels) != 1 || d.Hotels[0].Name != "Beach Stay" {
		t.Fatalf("embedded hotel data wrong: %+v", d.Hotels)
	}
}

func TestDataReplacedWholesaleEachTurn(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{
		Response: "ok",
		DataStore: travel.DataStore{
			Hotels: map[string]travel.HotelBatch{"goa": {Properties: []travel.Hotel{{Name: "A"}}}},
		},
	}}
	c := newController(api)
	c.Send(context.Background(), "hotels in goa")

	api.chatResp = chatModel.ChatResponse{
		Response: "ok",
		DataStore: travel.DataStore{
			News: map[string]travel.NewsBatch{"goa": {Articles: []travel.NewsArticle{{Title: "t"}}}},
		},
	}
	c.Send(context.Background(), "news about goa")

	if len(c.Data().Hotels) != 0 {
		t.Fatal("previous turn's hotels should be gone")
	}
	if len(c.Data().News) != 1 {
		t.Fatal("current turn's news should be present")
	}
}

func TestStaleReplyDiscardedAfterSessionSwitch(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{Response: "late reply"}}
	c := newController(api)

	other := c.Sessions().Create()
	c.NewSession()

	// Simulate the user switching away while the request is in flight.
	api.onChat = func() { c.Sessions().SetActive(other.ID) }
	c.Send(context.Background(), "hello")

	for _, entry := range c.Transcript() {
		if entry.Role == RoleAssistant {
			t.Fatalf("stale assistant reply should be discarded, got %q", entry.Content)
		}
	}
	if c.Loading() {
		t.Fatal("loading flag should be cleared even for stale turns")
	}
}

func TestSendStreamAccumulatesChunks(t *testing.T) {
	api := &fakeAPI{
		chunks:   []string{"Hel", "lo wor", "ld"},
		chatResp: chatModel.ChatResponse{Response: "Hello world"},
	}
	c := newController(api)

	// Capture the placeholder entry just before the stream completes; every
	// chunk must already be appended at that point.
	var inFlight string
	api.beforeStreamDone = func() {
		entries := c.Transcript()
		inFlight = entries[len(entries)-1].Content
	}

	c.SendStream(context.Background(), "say hello")

	if inFlight != "Hello world" {
		t.Fatalf("placeholder should hold the concatenated chunks, got %q", inFlight)
	}
	entries := c.Transcript()
	if len(entries) != 2 {
		t.Fatalf("expected user+assistant entries, got %d", len(entries))
	}
	if entries[1].Content != "Hello world" {
		t.Fatalf("final content should be the authoritative response, got %q", entries[1].Content)
	}
}

func TestSendStreamFailureReplacesPlaceholderWithApology(t *testing.T) {
	api := &fakeAPI{chunks: []string{"partial"}, streamErr: errors.New("connection reset")}
	c := newController(api)

	c.SendStream(context.Background(), "say hello")

	entries := c.Transcript()
	if entries[len(entries)-1].Content != apologyMessage {
		t.Fatalf("expected apology, got %q", entries[len(entries)-1].Content)
	}
}

func TestSwitchSessionMapsStoredRoles(t *testing.T) {
	api := &fakeAPI{history: chatModel.HistoryResponse{
		Messages: []chatModel.HistoryMessage{
			{Role: chatModel.RoleHuman, Content: "hi"},
			{Role: chatModel.RoleAI, Content: "hello"},
			{Role: "system", Content: "setup"},
		},
	}}
	c := newController(api)
	session := c.Sessions().Create()

	c.SwitchSession(context.Background(), session.ID)

	entries := c.Transcript()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[1].Role != RoleAssistant || entries[2].Role != "system" {
		t.Fatalf("role mapping wrong: %q %q %q", entries[0].Role, entries[1].Role, entries[2].Role)
	}
}

func TestClearDataDropsSnapshotKeepsTranscript(t *testing.T) {
	api := &fakeAPI{chatResp: chatModel.ChatResponse{
		Response: "ok",
		DataStore: travel.DataStore{
			News: map[string]travel.NewsBatch{"goa": {Articles: []travel.NewsArticle{{Title: "t"}}}},
		},
	}}
	c := newController(api)
	c.Send(context.Background(), "news about goa")

	if err := c.ClearData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !api.clearCalled {
		t.Fatal("backend clear-data should be called")
	}
	if !c.Data().Empty() {
		t.Fatal("snapshot should be empty")
	}
	if len(c.Transcript()) != 2 {
		t.Fatal("transcript must be untouched")
	}
}

func TestClearDataFailureKeepsSnapshot(t *testing.T) {
	api := &fakeAPI{
		chatResp: chatModel.ChatResponse{
			Response: "ok",
			DataStore: travel.DataStore{
				News: map[string]travel.NewsBatch{"goa": {Articles: []travel.NewsArticle{{Title: "t"}}}},
			},
		},
		clearErr: errors.New("offline"),
	}
	c := newController(api)
	c.Send(context.Background(), "news about goa")

	if err := c.ClearData(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Data().Empty() {
		t.Fatal("snapshot should survive a failed clear")
	}
}

func TestSwitchSessionHistoryFailureYieldsEmptyTranscript(t *testing.T) {
	api := &fakeAPI{historyErr: errors.New("offline")}
	c := newController(api)
	session := c.Sessions().Create()

	c.SwitchSession(context.Background(), session.ID)

	if len(c.Transcript()) != 0 {
		t.Fatal("history failure should leave an empty transcript")
	}
}
