// Package api is the HTTP client for the tripagent backend. It owns the
// bearer token plumbing: the token is read from local storage on every call
// and a 401 from any endpoint clears the stored credentials and notifies the
// owner so the login flow can take over.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"tripagent/internal/client/store"
	chatModel "tripagent/internal/model/chat"
)

// ErrUnauthorized is returned when the backend rejects the stored token. The
// caller should route the user to login.
var ErrUnauthorized = errors.New("authentication required")

// User is the identity document returned by the backend.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Client talks to the tripagent API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	storage        store.Storage
	onUnauthorized func()
}

// New creates a client. onUnauthorized may be nil; when set it fires after
// the stored credentials have been cleared following a 401.
func New(baseURL string, timeout time.Duration, storage store.Storage, onUnauthorized func()) *Client {
	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: timeout},
		storage:        storage,
		onUnauthorized: onUnauthorized,
	}
}

// Login exchanges credentials for a token, stores it and caches the user's
// identity for display.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", readErrorMessage(resp))
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	if err := c.storage.Set(store.KeyAuthToken, token.AccessToken); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	// Identity caching is best effort; the token is already usable.
	if user, err := c.Me(ctx); err == nil {
		if data, err := json.Marshal(user); err == nil {
			c.storage.Set(store.KeyUser, string(data))
		}
	}
	return nil
}

// Me fetches the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user)
	return user, err
}

// Chat runs one buffered chat turn.
func (c *Client) Chat(ctx context.Context, message, threadID string) (chatModel.ChatResponse, error) {
	var resp chatModel.ChatResponse
	req := chatModel.ChatRequest{Message: message, ThreadID: threadID}
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/chat/", req, &resp)
	return resp, err
}

// ChatStream runs one turn against the streaming endpoint. Chunks are handed
// to onChunk as they arrive; the accumulated body is parsed as the response
// document once the stream ends. A body that is not valid JSON is treated as
// plain response text with no structured data.
func (c *Client) ChatStream(ctx context.Context, message, threadID string, onChunk func(string)) (chatModel.ChatResponse, error) {
	body, err := json.Marshal(chatModel.ChatRequest{Message: message, ThreadID: threadID})
	if err != nil {
		return chatModel.ChatResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chat/stream", bytes.NewReader(body))
	if err != nil {
		return chatModel.ChatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chatModel.ChatResponse{}, fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearCredentials()
		return chatModel.ChatResponse{}, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return chatModel.ChatResponse{}, fmt.Errorf("stream failed: %s", readErrorMessage(resp))
	}

	var accumulated bytes.Buffer
	var pending []byte
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			accumulated.Write(buf[:n])
			if onChunk != nil {
				// A read may end mid-rune; hold the incomplete tail back so
				// every chunk delivered is valid UTF-8.
				data := append(pending, buf[:n]...)
				cut := completeRuneBoundary(data)
				if cut > 0 {
					onChunk(string(data[:cut]))
				}
				pending = append([]byte(nil), data[cut:]...)
			}
		}
		if err == io.EOF {
			if onChunk != nil && len(pending) > 0 {
				onChunk(string(pending))
			}
			break
		}
		if err != nil {
			return chatModel.ChatResponse{}, fmt.Errorf("stream read failed: %w", err)
		}
	}

	var parsed chatModel.ChatResponse
	if err := json.Unmarshal(accumulated.Bytes(), &parsed); err != nil {
		return chatModel.ChatResponse{
			Response: accumulated.String(),
			ThreadID: threadID,
		}, nil
	}
	return parsed, nil
}

// History fetches the stored transcript for a thread.
func (c *Client) History(ctx context.Context, threadID string) (chatModel.HistoryResponse, error) {
	var history chatModel.HistoryResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/chat/history/"+threadID, nil, &history)
	return history, err
}

// ClearData resets the backend's per-request data store.
func (c *Client) ClearData(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/chat/clear-data", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearCredentials()
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed: %s", readErrorMessage(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if token, ok := c.storage.Get(store.KeyAuthToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) clearCredentials() {
	c.storage.Delete(store.KeyAuthToken)
	c.storage.Delete(store.KeyUser)
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// completeRuneBoundary returns the length of the longest prefix of data that
// ends on a complete UTF-8 rune. Invalid bytes count as complete; only a
// truncated encoding at the very end is held back.
func completeRuneBoundary(data []byte) int {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if utf8.FullRune(data[i:]) {
			return len(data)
		}
		return i
	}
	return len(data)
}

func readErrorMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return resp.Status
}
