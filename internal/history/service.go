package history

import (
	"context"
	"strings"

	"smartmail-backend/internal/shared/telemetry"
)

// Service exposes history use cases.
type Service struct {
	Repo Repo
	// DefaultLimit is the list size used when a caller asks for none.
	DefaultLimit int
}

// NewService builds a Service over repo listing DefaultListLimit records by
// default.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, DefaultLimit: DefaultListLimit}
}

// Save persists a record and returns its id.
func (s *Service) Save(ctx context.Context, record Record) (string, error) {
	id, err := s.Repo.Insert(ctx, record)
	if err != nil {
		return "", err
	}
	telemetry.Info("history.saved", map[string]any{
		"history_id": id,
		"tone":       string(record.Tone),
		"mode":       string(record.Mode),
	})
	return id, nil
}

// List returns up to limit records, newest first, optionally filtered by q.
// A non-positive limit means DefaultLimit. Filtering scans the most recent
// MaxListLimit records.
func (s *Service) List(ctx context.Context, q string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	limit = clampLimit(limit)
	if strings.TrimSpace(q) == "" {
		return s.Repo.ListAll(ctx, limit)
	}
	records, err := s.Repo.ListAll(ctx, MaxListLimit)
	if err != nil {
		return nil, err
	}
	records = Filter(records, q)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.Repo.DeleteOne(ctx, id)
}

// Clear removes every record.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	n, err := s.Repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	telemetry.Info("history.cleared", map[string]any{"deleted": n})
	return n, nil
}
