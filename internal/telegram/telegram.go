// Package telegram is a minimal Telegram Bot API client covering what the
// chat front-end needs: long polling, messages, chat actions and inline
// keyboards.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// messageLimit is Telegram's hard cap on message text length.
const messageLimit = 4096

// Client talks to the Bot API at the given base URL
// (e.g. "https://api.telegram.org/bot<token>").
type Client struct {
	apiBase    string
	httpClient *http.Client
}

func NewClient(apiBase string, requestTimeout time.Duration) *Client {
	return &Client{
		apiBase: apiBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// response is the generic Telegram API response wrapper.
type response struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
}

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// GetUpdates long-polls the getUpdates API.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/getUpdates?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create getUpdates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var tgResp response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}
	if !tgResp.OK {
		// An API-level failure (revoked token, a competing polling instance)
		// must surface so the caller can log and back off instead of
		// re-polling immediately.
		return nil, fmt.Errorf("telegram getUpdates failed: %s", tgResp.Description)
	}

	var updates []Update
	if err := json.Unmarshal(tgResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates result: %w", err)
	}
	return updates, nil
}

// SendMessage sends plain text to the given chat, truncated to the API limit.
func (c *Client) SendMessage(chatID int64, text string) error {
	_, err := c.post("sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    truncate(text, messageLimit),
	})
	return err
}

// SendMarkdown sends text with Markdown parse mode.
func (c *Client) SendMarkdown(chatID int64, text string) error {
	_, err := c.post("sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       truncate(text, messageLimit),
		"parse_mode": "Markdown",
	})
	return err
}

// SendKeyboard sends a message carrying an inline keyboard and returns the
// sent message's ID so it can be edited later.
func (c *Client) SendKeyboard(chatID int64, text string, markup InlineKeyboardMarkup) (int64, error) {
	result, err := c.post("sendMessage", map[string]any{
		"chat_id":      chatID,
		"text":         truncate(text, messageLimit),
		"reply_markup": markup,
	})
	if err != nil {
		return 0, err
	}
	var sent Message
	if err := json.Unmarshal(result, &sent); err != nil {
		return 0, fmt.Errorf("failed to parse sendMessage result: %w", err)
	}
	return sent.MessageID, nil
}

// EditMessageText replaces a message's text and, when markup is non-nil, its
// inline keyboard.
func (c *Client) EditMessageText(chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       truncate(text, messageLimit),
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.post("editMessageText", payload)
	return err
}

// SendChatAction sends a chat action such as "typing".
func (c *Client) SendChatAction(chatID int64, action string) error {
	_, err := c.post("sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  action,
	})
	return err
}

// AnswerCallbackQuery acknowledges an inline keyboard press.
func (c *Client) AnswerCallbackQuery(callbackID string) error {
	if callbackID == "" {
		return nil
	}
	_, err := c.post("answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

func (c *Client) post(method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	resp, err := c.httpClient.Post(c.apiBase+"/"+method, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var tgResp response
	if err := json.Unmarshal(raw, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !tgResp.OK {
		return nil, fmt.Errorf("telegram %s failed: %s", method, tgResp.Description)
	}
	return tgResp.Result, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
