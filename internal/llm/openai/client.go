package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"smartmail-backend/internal/llm"
)

// Client implements llm.Provider using the official openai-go SDK.
type Client struct {
	model  string
	client openai.Client
}

// NewClient constructs an OpenAI provider. baseURL is optional and lets the
// provider target any OpenAI-compatible endpoint.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("OPENAI_MODEL is required")
	}
	// The chain owns retries by falling through to the next provider.
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{model: model, client: openai.NewClient(opts...)}, nil
}

func (c *Client) Name() string { return "openai" }

// Complete sends the prompt as a system and user message pair.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	params := prompt.Params
	if params == (llm.Params{}) {
		params = llm.DefaultParams()
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(float64(params.Temperature)),
		MaxTokens:   openai.Int(int64(params.MaxTokens)),
		TopP:        openai.Float(float64(params.TopP)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai status %d: %w", apiErr.StatusCode, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyCompletion
	}
	return content, nil
}

var _ llm.Provider = (*Client)(nil)
