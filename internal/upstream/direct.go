package upstream

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

// Direct calls the OpenRouter HTTP API with hand-built requests.
type Direct struct {
	apiKey     string
	baseURL    string
	referer    string
	title      string
	httpClient *http.Client
}

// NewDirect creates the raw-HTTP calling convention. referer and title are
// sent as the HTTP-Referer and X-Title attribution headers.
func NewDirect(apiKey, baseURL, referer, title string, timeout time.Duration) *Direct {
	return &Direct{
		apiKey:  apiKey,
		baseURL: baseURL,
		referer: referer,
		title:   title,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatPayload struct {
	Messages    []models.Message `json:"messages"`
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float32          `json:"temperature"`
}

type chatReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
}

// ChatCompletion sends one chat completion request. No retries.
func (d *Direct) ChatCompletion(ctx context.Context, req Request) (Result, error) {
	if d.apiKey == "" {
		return Result{}, ErrMissingKey
	}

	payload, err := json.Marshal(chatPayload{
		Messages:    req.Messages,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	body, err := d.do(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}

	var parsed chatReply
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse chat response: %s", truncate(string(body), 400))
	}

	result := Result{Model: parsed.Model}
	if result.Model == "" {
		result.Model = req.Model
	}
	if len(parsed.Choices) > 0 {
		result.Content = parsed.Choices[0].Message.Content
	}
	return result, nil
}

// ListModels fetches the upstream model catalog verbatim.
func (d *Direct) ListModels(ctx context.Context) (models.ModelCatalog, error) {
	if d.apiKey == "" {
		return models.ModelCatalog{}, ErrMissingKey
	}

	body, err := d.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return models.ModelCatalog{}, err
	}

	var catalog models.ModelCatalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return models.ModelCatalog{}, fmt.Errorf("failed to parse model list: %s", truncate(string(body), 400))
	}
	return catalog, nil
}

func (d *Direct) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("HTTP-Referer", d.referer)
	req.Header.Set("X-Title", d.title)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 400)}
	}
	return body, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
