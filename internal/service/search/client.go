// Package search wraps the SearchAPI.io engines used by the travel agent:
// google_flights, google_hotels and google_news. Each search returns a compact
// TOON summary for the agent plus the full batch for the UI.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tripagent/internal/config"
)

// Client is the shared bearer-authenticated provider client.
type Client struct {
	baseURL    string
	apiKey     string
	country    string
	language   string
	currency   string
	httpClient *http.Client
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.SearchConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		country:  cfg.Country,
		language: cfg.Language,
		currency: cfg.Currency,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// get performs one provider request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("search provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse search response: %w", err)
	}
	return nil
}

// baseParams returns the locale parameters shared by every engine.
func (c *Client) baseParams(engine string) url.Values {
	params := url.Values{}
	params.Set("engine", engine)
	params.Set("gl", c.country)
	params.Set("hl", c.language)
	return params
}
