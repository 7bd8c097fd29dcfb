package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/llm"
)

func testPrompt(t *testing.T) llm.Prompt {
	t.Helper()
	req, err := email.NewRequest("thank the team for shipping the release", email.ToneFriendly, email.ModeWrite, false)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return llm.BuildPrompt(req, llm.DefaultParams())
}

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hi team,\n\nThank you!"}}]
}`

func TestCompleteUsesChatCompletions(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Fatalf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := client.Complete(context.Background(), testPrompt(t))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Hi team,\n\nThank you!" {
		t.Fatalf("unexpected text %q", text)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("unexpected model %v", body["model"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestCompleteSurfacesStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client, _ := NewClient("sk-bad", "gpt-4o-mini", srv.URL+"/")
	_, err := client.Complete(context.Background(), testPrompt(t))
	if err == nil || !strings.Contains(err.Error(), "openai status 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := NewClient("sk", " ", ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
