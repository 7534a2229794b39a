package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetUpdates_ParsesMessagesAndCallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getUpdates" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"ok":true,"result":[`+
			`{"update_id":11,"message":{"message_id":1,"from":{"id":7},"chat":{"id":123},"text":"hi"}},`+
			`{"update_id":12,"callback_query":{"id":"cb-1","from":{"id":7},"data":"model:a/b","message":{"message_id":2,"chat":{"id":123}}}}`+
			`]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	updates, err := c.GetUpdates(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("GetUpdates failed: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "hi" || updates[0].Message.From.ID != 7 {
		t.Errorf("unexpected message update: %+v", updates[0])
	}
	if updates[1].CallbackQuery == nil || updates[1].CallbackQuery.Data != "model:a/b" {
		t.Errorf("unexpected callback update: %+v", updates[1])
	}
}

func TestGetUpdates_APIFailureSurfacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":false,"description":"Unauthorized"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	updates, err := c.GetUpdates(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("expected an error for an ok:false response")
	}
	if !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("expected the API description in the error, got: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}

func TestSendMarkdown_SetsParseMode(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sendMessage" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `{"ok":true,"result":{"message_id":5}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	if err := c.SendMarkdown(123, "hello\n\n_Model: x_"); err != nil {
		t.Fatalf("SendMarkdown failed: %v", err)
	}
	if !strings.Contains(gotBody, `"parse_mode":"Markdown"`) {
		t.Errorf("expected Markdown parse mode, got: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"chat_id":123`) {
		t.Errorf("expected chat_id in payload, got: %s", gotBody)
	}
}

func TestSendMessage_TruncatesLongText(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	if err := c.SendMessage(123, strings.Repeat("a", 10000)); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(gotBody) > 5000 {
		t.Errorf("expected truncated payload, got %d bytes", len(gotBody))
	}
}

func TestSendKeyboard_ReturnsMessageID(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `{"ok":true,"result":{"message_id":42,"chat":{"id":123}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	markup := InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "A", CallbackData: "model:a"}, {Text: "B", CallbackData: "model:b"}},
	}}
	id, err := c.SendKeyboard(123, "Choose a model:", markup)
	if err != nil {
		t.Fatalf("SendKeyboard failed: %v", err)
	}
	if id != 42 {
		t.Errorf("expected message ID 42, got %d", id)
	}
	if !strings.Contains(gotBody, `"inline_keyboard"`) {
		t.Errorf("expected inline keyboard payload, got: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"model:a"`) {
		t.Errorf("expected callback data, got: %s", gotBody)
	}
}

func TestPost_APIFailureSurfacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":false,"description":"chat not found"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	err := c.SendMessage(123, "hi")
	if err == nil {
		t.Fatal("expected an error for ok:false")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API description in error, got %v", err)
	}
}

func TestEditMessageText_IncludesMarkupWhenGiven(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/editMessageText" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	markup := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "»", CallbackData: "modelpage:1"}},
	}}
	if err := c.EditMessageText(123, 7, "Choose a model:", markup); err != nil {
		t.Fatalf("EditMessageText failed: %v", err)
	}
	if !strings.Contains(gotBody, `"message_id":7`) {
		t.Errorf("expected message_id, got: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"modelpage:1"`) {
		t.Errorf("expected navigation callback data, got: %s", gotBody)
	}
}
