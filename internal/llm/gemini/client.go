package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"smartmail-backend/internal/llm"
)

// chatModel is the slice of eino's BaseChatModel this provider needs.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Client implements llm.Provider on a Gemini chat model.
type Client struct {
	model string
	chat  chatModel
}

// Config configures the Gemini provider.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// NewClient creates the genai client and wraps it in an eino chat model.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultParams().MaxTokens
	}
	chat, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}
	return newWithModel(cfg.Model, chat), nil
}

func newWithModel(name string, chat chatModel) *Client {
	return &Client{model: name, chat: chat}
}

func (c *Client) Name() string { return "gemini" }

// Complete sends the prompt through the eino chat model.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(prompt.System),
		schema.UserMessage(prompt.User),
	}
	var opts []model.Option
	if prompt.Params.Temperature > 0 {
		opts = append(opts, model.WithTemperature(prompt.Params.Temperature))
	}
	if prompt.Params.TopP > 0 {
		opts = append(opts, model.WithTopP(prompt.Params.TopP))
	}

	out, err := c.chat.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if out == nil {
		return "", errors.New("gemini: nil message")
	}
	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", llm.ErrEmptyCompletion
	}
	return content, nil
}

var _ llm.Provider = (*Client)(nil)
