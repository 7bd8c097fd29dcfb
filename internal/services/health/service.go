package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB           Pinger
	HistoryStore string
	Providers    []string
	Timeout      time.Duration
}

// Status is the health payload.
type Status struct {
	OK           bool     `json:"ok"`
	Success      bool     `json:"success"`
	HistoryStore string   `json:"history_store"`
	Database     string   `json:"database"`
	Providers    []string `json:"providers"`
}

// NewService constructs a new health service.
func NewService(db Pinger, historyStore string, providers []string) *Service {
	return &Service{DB: db, HistoryStore: historyStore, Providers: providers, Timeout: 2 * time.Second}
}

// Status reports liveness and whether the history database answers. A
// database failure degrades the report but does not mark the service down,
// since generation works without history.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		OK:           true,
		Success:      true,
		HistoryStore: s.HistoryStore,
		Database:     "none",
		Providers:    append([]string(nil), s.Providers...),
	}
	if s.DB == nil {
		return st
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		st.Database = "unavailable"
		return st
	}
	st.Database = "ok"
	return st
}
