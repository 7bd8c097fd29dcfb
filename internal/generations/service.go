package generations

import (
	"context"
	"fmt"
	"time"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/history"
	"smartmail-backend/internal/llm"
	"smartmail-backend/internal/shared/metrics"
	"smartmail-backend/internal/shared/telemetry"
)

// Generator produces a completion for a prompt. *llm.Chain satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt llm.Prompt) (llm.Completion, error)
}

// HistorySaver persists generated records. *history.Service satisfies it.
type HistorySaver interface {
	Save(ctx context.Context, record history.Record) (string, error)
}

// Service turns validated requests into generated emails.
type Service struct {
	Generator Generator
	History   HistorySaver
	Params    llm.Params

	now func() time.Time
}

// NewService wires a Service. history may be nil to disable persistence.
func NewService(gen Generator, hist HistorySaver, params llm.Params) *Service {
	if params == (llm.Params{}) {
		params = llm.DefaultParams()
	}
	return &Service{Generator: gen, History: hist, Params: params, now: time.Now}
}

// Generate runs the provider chain for req. When req.Persist is set the
// record is saved before Generate returns; a failed save is reported as
// ErrPersistFailed.
func (s *Service) Generate(ctx context.Context, req email.Request) (email.Result, error) {
	if err := req.Validate(); err != nil {
		return email.Result{}, err
	}

	startedAt := s.clock()
	metrics.IncGenerationStarted()
	requestID := telemetry.RequestID(ctx)

	completion, err := s.Generator.Generate(ctx, llm.BuildPrompt(req, s.Params))
	if err != nil {
		metrics.IncGenerationFailed()
		metrics.ObserveGenerationDurationMs(metrics.SinceMillis(startedAt))
		telemetry.Error("generation.failed", map[string]any{
			"request_id": requestID,
			"tone":       string(req.Tone),
			"mode":       string(req.Mode),
			"error":      err.Error(),
		})
		return email.Result{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	html, err := email.RenderHTML(completion.Text)
	if err != nil {
		telemetry.Warn("generation.render_failed", map[string]any{"request_id": requestID, "error": err.Error()})
	}

	result := email.Result{
		GeneratedText: completion.Text,
		HTML:          html,
		Tone:          req.Tone,
		Mode:          req.Mode,
		Provider:      completion.Provider,
		Timestamp:     s.clock().UTC(),
		Success:       true,
	}

	if req.Persist && s.History != nil {
		id, err := s.History.Save(ctx, history.NewRecord(req, result))
		if err != nil {
			metrics.IncGenerationFailed()
			telemetry.Error("generation.persist_failed", map[string]any{
				"request_id":     requestID,
				"provider":       completion.Provider,
				"generated_text": completion.Text,
				"error":          err.Error(),
			})
			return email.Result{}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
		result.HistoryID = id
	}

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(metrics.SinceMillis(startedAt))
	telemetry.Info("generation.completed", map[string]any{
		"request_id": requestID,
		"tone":       string(req.Tone),
		"mode":       string(req.Mode),
		"provider":   completion.Provider,
		"persisted":  result.HistoryID != "",
	})
	return result, nil
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
