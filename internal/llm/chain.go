package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartmail-backend/internal/shared/metrics"
	"smartmail-backend/internal/shared/telemetry"
)

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 8 * time.Second

// Chain tries ranked providers in order and falls back to a provider that
// does not depend on the network. Attempts are sequential.
type Chain struct {
	providers      []Provider
	fallback       Provider
	attemptTimeout time.Duration
}

// NewChain builds a chain. A nil fallback leaves the chain without a final
// layer, which only tests should do.
func NewChain(providers []Provider, fallback Provider, attemptTimeout time.Duration) *Chain {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	ranked := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ranked = append(ranked, p)
		}
	}
	return &Chain{providers: ranked, fallback: fallback, attemptTimeout: attemptTimeout}
}

// Names lists the providers in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	if c.fallback != nil {
		names = append(names, c.fallback.Name())
	}
	return names
}

// Generate returns the first non-empty completion. Remote providers get
// attemptTimeout each; the fallback runs with the caller's context.
func (c *Chain) Generate(ctx context.Context, prompt Prompt) (Completion, error) {
	var errs []error
	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		text, err := c.attempt(ctx, p, prompt)
		if err == nil {
			metrics.IncProviderServed(p.Name())
			return Completion{Text: text, Provider: p.Name()}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		metrics.IncProviderFailure(p.Name())
		telemetry.Warn("llm.provider_failed", map[string]any{
			"provider": p.Name(),
			"attempt":  i + 1,
			"error":    err.Error(),
		})
	}

	if c.fallback != nil {
		text, err := complete(ctx, c.fallback, prompt)
		if err == nil {
			metrics.IncProviderServed(c.fallback.Name())
			metrics.IncGenerationFallback()
			return Completion{Text: text, Provider: c.fallback.Name()}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.fallback.Name(), err))
		metrics.IncProviderFailure(c.fallback.Name())
	}

	telemetry.Error("llm.providers_exhausted", map[string]any{"error": errors.Join(errs...).Error()})
	return Completion{}, fmt.Errorf("%w: %w", ErrProviderExhausted, errors.Join(errs...))
}

func (c *Chain) attempt(ctx context.Context, p Provider, prompt Prompt) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	return complete(attemptCtx, p, prompt)
}

func complete(ctx context.Context, p Provider, prompt Prompt) (string, error) {
	raw, err := p.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := Clean(raw)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Clean trims the completion and drops a leading subject line.
func Clean(raw string) string {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	first, rest, found := strings.Cut(text, "\n")
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(first)), "subject:") {
		if !found {
			return ""
		}
		text = strings.TrimSpace(rest)
	}
	return text
}
