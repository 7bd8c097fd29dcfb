package llm

import (
	"context"
	"errors"
)

// Message is one chat message sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is the provider-neutral instruction for one generation.
type Prompt struct {
	System string
	User   string
	Params Params
	// Source carries the request so template-based providers can work without
	// parsing the instruction text.
	Source Source
}

// Source is the request a prompt was built from.
type Source struct {
	Text string
	Tone string
	Mode string
}

// Params are sampling parameters shared by chat providers.
type Params struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float32 `json:"top_p"`
}

// DefaultParams mirrors the settings the service was tuned with.
func DefaultParams() Params {
	return Params{Temperature: 0.7, MaxTokens: 1500, TopP: 0.95}
}

// Messages returns the system and user chat messages.
func (p Prompt) Messages() []Message {
	return []Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
}

// Provider is one text generation backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Completion is the text a provider produced and which provider produced it.
type Completion struct {
	Text     string
	Provider string
}

var (
	// ErrProviderExhausted means every provider, including the local
	// generator, failed. A well-formed deployment never returns it.
	ErrProviderExhausted = errors.New("all generation providers failed")

	// ErrEmptyCompletion is returned when a provider answers with no text.
	ErrEmptyCompletion = errors.New("provider returned empty content")
)
