package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/llm"
)

func testPrompt(t *testing.T) llm.Prompt {
	t.Helper()
	req, err := email.NewRequest("hey can u send the report asap", email.ToneProfessional, email.ModeRewrite, false)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return llm.BuildPrompt(req, llm.DefaultParams())
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer gsk-test" {
			t.Fatalf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Hello,\n\nPlease send the report.  "}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("gsk-test", "openai/gpt-oss-120b", srv.URL+"/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := client.Complete(context.Background(), testPrompt(t))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Hello,\n\nPlease send the report." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "openai/gpt-oss-120b" || got.MaxTokens != 1500 || got.Temperature != 0.7 || got.TopP != 0.95 {
		t.Fatalf("unexpected request params %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestCompleteMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, want: ErrInvalidAPIKey},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, want: ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, _ := NewClient("k", "m", srv.URL)
			_, err := client.Complete(context.Background(), testPrompt(t))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompleteReportsProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	client, _ := NewClient("k", "m", srv.URL)
	_, err := client.Complete(context.Background(), testPrompt(t))
	if err == nil || err.Error() != "groq status 502: upstream overloaded" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer srv.Close()

	client, _ := NewClient("k", "m", srv.URL)
	if _, err := client.Complete(context.Background(), testPrompt(t)); !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(" ", "m", ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestCompleteRateLimitCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	client, _ := NewClient("k", "m", srv.URL)
	_, err := client.Complete(context.Background(), testPrompt(t))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.RetryAfter != 7*time.Second || apiErr.Message != "rate limited" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited match")
	}
}
