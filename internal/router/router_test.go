package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"companion-bot/internal/handlers"
	"companion-bot/internal/models"
	"companion-bot/internal/upstream"
)

type okUpstream struct{}

func (okUpstream) ChatCompletion(ctx context.Context, req upstream.Request) (upstream.Result, error) {
	return upstream.Result{Content: "hello", Model: "x"}, nil
}

func (okUpstream) ListModels(ctx context.Context) (models.ModelCatalog, error) {
	return models.ModelCatalog{Data: []json.RawMessage{json.RawMessage(`{"id":"a"}`)}}, nil
}

func newTestRouter() http.Handler {
	return New(handlers.NewChatHandler(okUpstream{}, "default/model"))
}

func TestRoutes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"chat", http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`, http.StatusOK},
		{"models", http.MethodGet, "/api/models", "", http.StatusOK},
		{"root", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"chat wrong method", http.MethodGet, "/api/chat", "", http.StatusMethodNotAllowed},
		{"unknown", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d; body=%s", tc.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRequestIDAndCORSHeaders(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected open CORS policy, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rr.Code)
	}
}
