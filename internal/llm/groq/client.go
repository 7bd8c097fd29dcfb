package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartmail-backend/internal/llm"
	"smartmail-backend/internal/shared/telemetry"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client talks to Groq chat completions over plain HTTP.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewClient builds a Groq provider. The HTTP timeout is only a backstop; the
// chain bounds each attempt through ctx.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	switch {
	case strings.TrimSpace(apiKey) == "":
		return nil, errors.New("GROQ_API_KEY is required")
	case strings.TrimSpace(model) == "":
		return nil, errors.New("GROQ_MODEL is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		http:     &http.Client{Timeout: time.Minute},
	}, nil
}

func (c *Client) Name() string { return "groq" }

// Complete returns the trimmed content of the first choice.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	resp, err := c.post(ctx, c.request(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: response has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}

	fields := map[string]any{"provider": "groq", "model": c.model, "finish_reason": resp.Choices[0].FinishReason}
	if u := resp.Usage; u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["completion_tokens"] = u.CompletionTokens
		fields["total_tokens"] = u.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

func (c *Client) request(prompt llm.Prompt) chatRequest {
	p := prompt.Params
	if p == (llm.Params{}) {
		p = llm.DefaultParams()
	}
	msgs := prompt.Messages()
	out := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, 0, len(msgs)),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		TopP:        p.TopP,
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, chatMessage(m))
	}
	return out
}

func (c *Client) post(ctx context.Context, body chatRequest) (*chatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("groq: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("groq: read response: %w", err)
	}
	var parsed chatResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode/100 != 2 {
		if decodeErr != nil {
			return nil, newAPIError(resp, bytes.TrimSpace(raw), nil)
		}
		return nil, newAPIError(resp, bytes.TrimSpace(raw), &parsed)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("groq: decode response: %w", decodeErr)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("groq: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	return &parsed, nil
}

var _ llm.Provider = (*Client)(nil)
