package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"companion-bot/internal/models"
	"companion-bot/internal/upstream"
)

// ChatHandler forwards chat and model-list requests to the upstream provider
// through whichever calling convention was selected at startup.
type ChatHandler struct {
	client       upstream.Client
	defaultModel string
}

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

func NewChatHandler(client upstream.Client, defaultModel string) *ChatHandler {
	return &ChatHandler{
		client:       client,
		defaultModel: defaultModel,
	}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Model == "" {
		req.Model = h.defaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}
	temperature := float32(defaultTemperature)
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	result, err := h.client.ChatCompletion(r.Context(), upstream.Request{
		Messages:    req.Messages,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		h.writeUpstreamError(w, "Error calling OpenRouter API", err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response: result.Content,
		Model:    result.Model,
	})
}

// Models handles GET /api/models, passing the upstream catalog through.
func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.client.ListModels(r.Context())
	if err != nil {
		h.writeUpstreamError(w, "Error fetching models", err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// Root handles GET /, a static liveness/info message.
func (h *ChatHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Personal companion bot API is running.",
	})
}

func (h *ChatHandler) writeUpstreamError(w http.ResponseWriter, prefix string, err error) {
	log.Printf("%s: %v", prefix, err)
	if errors.Is(err, upstream.ErrMissingKey) {
		writeDetail(w, http.StatusInternalServerError, upstream.ErrMissingKey.Error())
		return
	}
	writeDetail(w, http.StatusBadGateway, prefix+": "+err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}
