package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PullRequestInc/go-gpt3"

	"companion-bot/internal/models"
)

// Wrapped delegates chat completions to the go-gpt3 client library configured
// with the OpenRouter base URL. The library has no notion of default headers
// or of an aggregator model catalog, so attribution headers are injected by a
// wrapping RoundTripper and the catalog is fetched over the same HTTP client.
type Wrapped struct {
	apiKey     string
	baseURL    string
	client     gpt3.Client
	httpClient *http.Client
}

// NewWrapped creates the library-backed calling convention.
func NewWrapped(apiKey, baseURL, referer, title string, timeout time.Duration) *Wrapped {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			referer: referer,
			title:   title,
		},
	}
	client := gpt3.NewClient(apiKey,
		gpt3.WithBaseURL(baseURL),
		gpt3.WithHTTPClient(httpClient),
		gpt3.WithTimeout(timeout),
	)
	return &Wrapped{
		apiKey:     apiKey,
		baseURL:    baseURL,
		client:     client,
		httpClient: httpClient,
	}
}

// ChatCompletion sends one chat completion request through the library.
func (w *Wrapped) ChatCompletion(ctx context.Context, req Request) (Result, error) {
	if w.apiKey == "" {
		return Result{}, ErrMissingKey
	}

	messages := make([]gpt3.ChatCompletionRequestMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, gpt3.ChatCompletionRequestMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	temperature := req.Temperature
	completion, err := w.client.ChatCompletion(ctx, gpt3.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		var apiErr gpt3.APIError
		if errors.As(err, &apiErr) {
			return Result{}, &StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
		}
		return Result{}, fmt.Errorf("upstream request failed: %w", err)
	}

	result := Result{Model: completion.Model}
	if result.Model == "" {
		result.Model = req.Model
	}
	if len(completion.Choices) > 0 {
		result.Content = completion.Choices[0].Message.Content
	}
	return result, nil
}

// ListModels fetches the upstream model catalog verbatim.
func (w *Wrapped) ListModels(ctx context.Context) (models.ModelCatalog, error) {
	if w.apiKey == "" {
		return models.ModelCatalog{}, ErrMissingKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/models", nil)
	if err != nil {
		return models.ModelCatalog{}, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return models.ModelCatalog{}, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ModelCatalog{}, fmt.Errorf("failed reading upstream response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.ModelCatalog{}, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 400)}
	}

	var catalog models.ModelCatalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return models.ModelCatalog{}, fmt.Errorf("failed to parse model list: %s", truncate(string(body), 400))
	}
	return catalog, nil
}

// headerTransport adds the OpenRouter attribution headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("HTTP-Referer", t.referer)
	clone.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(clone)
}
