package history

import "context"

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Repo defines persistence operations for history records.
type Repo interface {
	Insert(ctx context.Context, record Record) (string, error)
	// ListAll returns at most limit records, most recent first.
	ListAll(ctx context.Context, limit int) ([]Record, error)
	DeleteOne(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
