// Package relayclient is the HTTP client both front-ends use to reach the
// relay service.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"companion-bot/internal/models"
)

// Client calls the relay's chat and model-list endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a relay client for the given base URL
// (e.g. "http://localhost:8000").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat sends the conversation to the relay and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, messages []models.Message, model string) (models.ChatResponse, error) {
	temperature := float32(0.7)
	payload, err := json.Marshal(models.ChatRequest{
		Messages:    messages,
		Model:       model,
		MaxTokens:   1000,
		Temperature: &temperature,
	})
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return models.ChatResponse{}, err
	}

	var parsed models.ChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.ChatResponse{}, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return parsed, nil
}

// Models fetches the model catalog from the relay.
func (c *Client) Models(ctx context.Context) ([]models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []models.ModelInfo `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model list: %w", err)
	}
	return parsed.Data, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
			return nil, fmt.Errorf("relay error: %s", apiErr.Detail)
		}
		return nil, fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return body, nil
}
