package models

import "encoding/json"

// Message roles understood by the relay and both front-ends.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. Absent optional
// fields are filled with the relay's configured defaults before dispatch.
// Temperature is a pointer so an explicit 0 survives the round trip.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
}

// ChatResponse is the relay's reply. Model is the identifier the upstream
// provider actually used, which may differ from the one requested.
type ChatResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// ModelCatalog wraps the upstream model list. Each entry is an opaque
// upstream-defined descriptor passed through verbatim.
type ModelCatalog struct {
	Data []json.RawMessage `json:"data"`
}

// ModelInfo is the subset of a model descriptor the front-ends care about.
// Unknown fields are ignored on decode.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}

// ErrorResponse is the relay's error body for any non-2xx status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
